package escrow

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/rent"
	"github.com/iov-one/tokenswap/x/token"
)

// InitHandler opens an escrow.
//
// Accounts:
//   0. [signer] initializer
//   1. [writable] custody token account, owned by the initializer
//   2. [] token account the initializer is paid into
//   3. [writable] escrow record
//   4. [] rent sysvar
//   5. [] token program
type InitHandler struct{}

type initAccounts struct {
	initializer, custody, receiving, record, rentSysvar, tokenProgram *tokenswap.AccountInfo
}

// Process records the escrow and makes the escrow authority the owner of
// the custody account.
func (h InitHandler) Process(ctx context.Context, env tokenswap.Env, accounts []*tokenswap.AccountInfo, ix InitEscrow) error {
	a, err := h.validate(env, accounts, ix)
	if err != nil {
		return err
	}

	record := Record{
		IsInitialized:  true,
		Initializer:    a.initializer.Key,
		Custody:        a.custody.Key,
		Receiving:      a.receiving.Key,
		ExpectedAmount: ix.Amount,
	}
	if err := Pack(&record, a.record.Data); err != nil {
		return err
	}

	auth, err := Authority(env.ProgramID())
	if err != nil {
		return err
	}
	owner := auth.Address
	setOwner := token.NewSetAuthorityInstruction(a.custody.Key, a.initializer.Key, token.AuthorityAccountOwner, &owner)
	if err := env.Invoke(ctx, setOwner, []*tokenswap.AccountInfo{a.custody, a.initializer, a.tokenProgram}); err != nil {
		return errors.Wrap(err, "transfer custody")
	}
	tokenswap.Logf(ctx, "escrow %s expects %d", a.record.Key, ix.Amount)
	return nil
}

func (InitHandler) validate(env tokenswap.Env, accounts []*tokenswap.AccountInfo, ix InitEscrow) (*initAccounts, error) {
	list, err := nextAccounts(accounts, 6)
	if err != nil {
		return nil, err
	}
	a := &initAccounts{
		initializer:  list[0],
		custody:      list[1],
		receiving:    list[2],
		record:       list[3],
		rentSysvar:   list[4],
		tokenProgram: list[5],
	}

	if !a.initializer.IsSigner {
		return nil, errors.Wrapf(errors.ErrMissingRequiredSignature, "initializer %s", a.initializer.Key)
	}
	if err := checkOwner(a.receiving, solana.TokenProgramID); err != nil {
		return nil, errors.Wrap(err, "receiving account")
	}
	r, err := rent.FromAccount(a.rentSysvar)
	if err != nil {
		return nil, err
	}
	if !r.IsExempt(a.record.Lamports, len(a.record.Data)) {
		return nil, errors.Wrapf(ErrNotRentExempt, "escrow record holds %d lamports, needs %d",
			a.record.Lamports, r.MinimumBalance(len(a.record.Data)))
	}
	record, err := UnpackUnchecked(a.record.Data)
	if err != nil {
		return nil, err
	}
	if record.IsInitialized {
		return nil, errors.Wrapf(errors.ErrAccountAlreadyInitialized, "escrow record %s", a.record.Key)
	}
	if err := checkOwner(a.record, env.ProgramID()); err != nil {
		return nil, errors.Wrap(err, "escrow record")
	}
	if err := checkTokenProgram(a.tokenProgram); err != nil {
		return nil, err
	}
	if ix.Amount == 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "expected amount must not be zero")
	}
	return a, nil
}
