package escrow

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/token"
)

// CancelHandler closes an escrow without a taker.
//
// Accounts:
//   0. [signer, writable] initializer
//   1. [writable] token account the deposit is returned to
//   2. [writable] custody token account
//   3. [writable] escrow record
//   4. [] token program
//   5. [] escrow authority
type CancelHandler struct{}

// Process returns the whole deposit to the initializer and closes both the
// custody account and the escrow record.
func (CancelHandler) Process(ctx context.Context, env tokenswap.Env, accounts []*tokenswap.AccountInfo, _ CancelEscrow) error {
	list, err := nextAccounts(accounts, 6)
	if err != nil {
		return err
	}
	initializer, refund, custody, recordInfo, tokenProgram, authority := list[0], list[1], list[2], list[3], list[4], list[5]

	if !initializer.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "initializer %s", initializer.Key)
	}
	if err := checkTokenProgram(tokenProgram); err != nil {
		return err
	}
	record, err := loadRecord(env, recordInfo)
	if err != nil {
		return err
	}
	if !record.Initializer.Equals(initializer.Key) {
		return errors.Wrapf(errors.ErrInvalidAccountData, "initializer %s does not belong to the escrow", initializer.Key)
	}
	if !record.Custody.Equals(custody.Key) {
		return errors.Wrapf(errors.ErrInvalidAccountData, "custody %s does not belong to the escrow", custody.Key)
	}
	if err := checkOwner(custody, solana.TokenProgramID); err != nil {
		return errors.Wrap(err, "custody")
	}
	deposit, err := token.UnpackAccount(custody.Data)
	if err != nil {
		return errors.Wrap(err, "custody")
	}
	auth, err := checkAuthority(env, authority)
	if err != nil {
		return err
	}

	tokenswap.Logf(ctx, "returning %d to %s", deposit.Amount, refund.Key)
	ret := token.NewTransferInstruction(custody.Key, refund.Key, auth.Address, deposit.Amount)
	if err := env.InvokeSigned(ctx, ret, []*tokenswap.AccountInfo{custody, refund, authority, tokenProgram}, auth.Proof()); err != nil {
		return errors.Wrap(err, "return deposit")
	}
	closeCustody := token.NewCloseAccountInstruction(custody.Key, initializer.Key, auth.Address)
	if err := env.InvokeSigned(ctx, closeCustody, []*tokenswap.AccountInfo{custody, initializer, authority, tokenProgram}, auth.Proof()); err != nil {
		return errors.Wrap(err, "close custody")
	}
	return closeAccount(initializer, recordInfo)
}
