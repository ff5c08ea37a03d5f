package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

// Client builds, signs and submits transactions to a ledger and reads the
// state of the accounts they touch.
//
// Basic accessors are declared here. Token and escrow workflows built on top
// of them live in token.go and escrow.go.
type Client struct {
	ledger    *runtime.Ledger
	programID solana.PublicKey
}

// NewClient returns a client of a ledger running the escrow program under
// given id.
func NewClient(l *runtime.Ledger, escrowProgramID solana.PublicKey) *Client {
	return &Client{ledger: l, programID: escrowProgramID}
}

// RegisterPrograms registers the system, token and escrow programs.
func RegisterPrograms(r tokenswap.Registry, escrowProgramID solana.PublicKey) error {
	if err := system.Register(r); err != nil {
		return errors.Wrap(err, "system")
	}
	if err := token.Register(r); err != nil {
		return errors.Wrap(err, "token")
	}
	if err := escrow.Register(r, escrowProgramID); err != nil {
		return errors.Wrap(err, "escrow")
	}
	return nil
}

// ProgramID returns the id of the escrow program.
func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// SubmitTx signs given instructions as a single transaction and executes
// it. The result is returned even when the transaction failed.
func (c *Client) SubmitTx(ctx context.Context, signers []solana.PrivateKey, instructions ...solana.Instruction) (*runtime.Result, error) {
	tx, err := runtime.NewTx(instructions...)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(signers...); err != nil {
		return nil, err
	}
	return c.ledger.Execute(ctx, tx)
}

// Account returns the state of an address. ErrNotFound is returned for an
// address without lamports.
func (c *Client) Account(addr solana.PublicKey) (*tokenswap.Account, error) {
	return c.ledger.Account(addr)
}

// Lamports returns the balance of an address. An address that was never
// funded has no lamports.
func (c *Client) Lamports(addr solana.PublicKey) (uint64, error) {
	acc, err := c.ledger.Account(addr)
	switch {
	case errors.ErrNotFound.Is(err):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return acc.Lamports, nil
}

// TokenAccount reads an initialized token account.
func (c *Client) TokenAccount(addr solana.PublicKey) (*token.Account, error) {
	acc, err := c.owned(addr, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	return token.UnpackAccount(acc.Data)
}

// Mint reads an initialized mint.
func (c *Client) Mint(addr solana.PublicKey) (*token.Mint, error) {
	acc, err := c.owned(addr, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	return token.UnpackMint(acc.Data)
}

// Escrow reads an open escrow record.
func (c *Client) Escrow(addr solana.PublicKey) (*escrow.Record, error) {
	acc, err := c.owned(addr, c.programID)
	if err != nil {
		return nil, err
	}
	return escrow.Unpack(acc.Data)
}

func (c *Client) owned(addr, owner solana.PublicKey) (*tokenswap.Account, error) {
	acc, err := c.ledger.Account(addr)
	if err != nil {
		return nil, err
	}
	if !acc.Owner.Equals(owner) {
		return nil, errors.Wrapf(errors.ErrIncorrectProgramID, "%s is owned by %s", addr, acc.Owner)
	}
	return acc, nil
}

// minimumBalance returns the lamports an account of given size needs to be
// rent exempt.
func (c *Client) minimumBalance(space int) (uint64, error) {
	r, err := c.ledger.Rent()
	if err != nil {
		return 0, err
	}
	return r.MinimumBalance(space), nil
}
