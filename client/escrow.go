package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/iov-one/tokenswap/x/token"
)

// Offer describes an escrow to open.
type Offer struct {
	Initializer solana.PrivateKey
	// Source is a token account of the initializer the deposit is taken
	// from.
	Source  solana.PublicKey
	Deposit uint64
	// Receiving is a token account of the initializer that gets paid.
	Receiving solana.PublicKey
	// Expected is the amount of tokens the initializer wants in return.
	Expected uint64
}

// Opened is an escrow created by OpenEscrow.
type Opened struct {
	Record  solana.PublicKey
	Custody solana.PublicKey
	Result  *runtime.Result
}

// OpenEscrow moves the deposit into a new custody account and opens an
// escrow for it, all in one transaction. The initializer pays for both new
// accounts.
func (c *Client) OpenEscrow(ctx context.Context, o Offer) (*Opened, error) {
	source, err := c.TokenAccount(o.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	initializer := o.Initializer.PublicKey()
	custody := solana.NewWallet().PrivateKey
	record := solana.NewWallet().PrivateKey

	ixs, err := c.tokenAccountInstructions(initializer, custody.PublicKey(), source.Mint, initializer)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, token.NewTransferInstruction(o.Source, custody.PublicKey(), initializer, o.Deposit))

	createRecord, err := c.CreateAccountInstruction(initializer, record.PublicKey(), c.programID, escrow.RecordLen)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, createRecord, escrow.NewInitEscrowInstruction(c.programID, escrow.InitAccounts{
		Initializer: initializer,
		Custody:     custody.PublicKey(),
		Receiving:   o.Receiving,
		Record:      record.PublicKey(),
	}, o.Expected))

	res, err := c.SubmitTx(ctx, []solana.PrivateKey{o.Initializer, custody, record}, ixs...)
	if err != nil {
		return nil, errors.Wrap(err, "open escrow")
	}
	return &Opened{Record: record.PublicKey(), Custody: custody.PublicKey(), Result: res}, nil
}

// Take completes the escrow stored at record. The taker pays from sending
// and receives the deposit into receiving. Amount is the deposit the taker
// expects to get.
func (c *Client) Take(ctx context.Context, taker solana.PrivateKey, record, sending, receiving solana.PublicKey, amount uint64) (*runtime.Result, error) {
	r, err := c.Escrow(record)
	if err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	ix, err := escrow.NewExchangeInstruction(c.programID, escrow.ExchangeAccounts{
		Taker:                taker.PublicKey(),
		TakerSending:         sending,
		TakerReceiving:       receiving,
		Custody:              r.Custody,
		Initializer:          r.Initializer,
		InitializerReceiving: r.Receiving,
		Record:               record,
	}, amount)
	if err != nil {
		return nil, err
	}
	return c.SubmitTx(ctx, []solana.PrivateKey{taker}, ix)
}

// Cancel closes the escrow stored at record and returns the deposit into
// refund.
func (c *Client) Cancel(ctx context.Context, initializer solana.PrivateKey, record, refund solana.PublicKey) (*runtime.Result, error) {
	r, err := c.Escrow(record)
	if err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	ix, err := escrow.NewCancelEscrowInstruction(c.programID, escrow.CancelAccounts{
		Initializer: initializer.PublicKey(),
		Refund:      refund,
		Custody:     r.Custody,
		Record:      record,
	})
	if err != nil {
		return nil, err
	}
	return c.SubmitTx(ctx, []solana.PrivateKey{initializer}, ix)
}
