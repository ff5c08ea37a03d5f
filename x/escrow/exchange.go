package escrow

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/pda"
	"github.com/iov-one/tokenswap/x/token"
)

// ExchangeHandler completes an escrow.
//
// Accounts:
//   0. [signer] taker
//   1. [writable] taker token account paying the initializer
//   2. [writable] taker token account receiving the deposit
//   3. [writable] custody token account
//   4. [writable] initializer main account
//   5. [writable] initializer token account being paid
//   6. [writable] escrow record
//   7. [] token program
//   8. [] escrow authority
type ExchangeHandler struct{}

type exchangeAccounts struct {
	taker, takerSending, takerReceiving, custody, initializer,
	initializerReceiving, record, tokenProgram, authority *tokenswap.AccountInfo

	escrow  *Record
	deposit *token.Account
	auth    pda.Authority
}

// Process pays the initializer, releases the deposit to the taker and closes
// both the custody account and the escrow record. Either all of it happens
// or, as the transaction fails, none of it.
func (h ExchangeHandler) Process(ctx context.Context, env tokenswap.Env, accounts []*tokenswap.AccountInfo, ix Exchange) error {
	a, err := h.validate(env, accounts, ix)
	if err != nil {
		return err
	}

	pay := token.NewTransferInstruction(a.takerSending.Key, a.initializerReceiving.Key, a.taker.Key, a.escrow.ExpectedAmount)
	if err := env.Invoke(ctx, pay, []*tokenswap.AccountInfo{a.takerSending, a.initializerReceiving, a.taker, a.tokenProgram}); err != nil {
		return errors.Wrap(err, "pay initializer")
	}

	tokenswap.Logf(ctx, "releasing %d to %s", a.deposit.Amount, a.takerReceiving.Key)
	release := token.NewTransferInstruction(a.custody.Key, a.takerReceiving.Key, a.auth.Address, a.deposit.Amount)
	if err := env.InvokeSigned(ctx, release, []*tokenswap.AccountInfo{a.custody, a.takerReceiving, a.authority, a.tokenProgram}, a.auth.Proof()); err != nil {
		return errors.Wrap(err, "release deposit")
	}

	closeCustody := token.NewCloseAccountInstruction(a.custody.Key, a.initializer.Key, a.auth.Address)
	if err := env.InvokeSigned(ctx, closeCustody, []*tokenswap.AccountInfo{a.custody, a.initializer, a.authority, a.tokenProgram}, a.auth.Proof()); err != nil {
		return errors.Wrap(err, "close custody")
	}
	return closeAccount(a.initializer, a.record)
}

func (ExchangeHandler) validate(env tokenswap.Env, accounts []*tokenswap.AccountInfo, ix Exchange) (*exchangeAccounts, error) {
	list, err := nextAccounts(accounts, 9)
	if err != nil {
		return nil, err
	}
	a := &exchangeAccounts{
		taker:                list[0],
		takerSending:         list[1],
		takerReceiving:       list[2],
		custody:              list[3],
		initializer:          list[4],
		initializerReceiving: list[5],
		record:               list[6],
		tokenProgram:         list[7],
		authority:            list[8],
	}

	if !a.taker.IsSigner {
		return nil, errors.Wrapf(errors.ErrMissingRequiredSignature, "taker %s", a.taker.Key)
	}

	if err := checkOwner(a.custody, solana.TokenProgramID); err != nil {
		return nil, errors.Wrap(err, "custody")
	}
	if a.deposit, err = token.UnpackAccount(a.custody.Data); err != nil {
		return nil, errors.Wrap(err, "custody")
	}
	if ix.Amount != a.deposit.Amount {
		return nil, errors.Wrapf(ErrExpectedAmountMismatch, "want %d, custody holds %d", ix.Amount, a.deposit.Amount)
	}

	if a.escrow, err = loadRecord(env, a.record); err != nil {
		return nil, err
	}
	if !a.escrow.Custody.Equals(a.custody.Key) {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "custody %s does not belong to the escrow", a.custody.Key)
	}
	if !a.escrow.Initializer.Equals(a.initializer.Key) {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "initializer %s does not belong to the escrow", a.initializer.Key)
	}
	if !a.escrow.Receiving.Equals(a.initializerReceiving.Key) {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "receiving account %s does not belong to the escrow", a.initializerReceiving.Key)
	}

	if err := checkTokenProgram(a.tokenProgram); err != nil {
		return nil, err
	}
	if a.auth, err = checkAuthority(env, a.authority); err != nil {
		return nil, err
	}
	return a, nil
}
