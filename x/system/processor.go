package system

import (
	"context"

	"github.com/gagliardetto/solana-go"
	solsystem "github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Processor executes system program instructions.
type Processor struct{}

var _ tokenswap.Program = Processor{}

// Register adds the system program to the ledger under its well known id.
func Register(r tokenswap.Registry) error {
	return r.Register(solana.SystemProgramID, Processor{})
}

func (Processor) Process(ctx context.Context, env tokenswap.Env, accounts []*tokenswap.AccountInfo, data []byte) error {
	ix, err := Decode(accounts, data)
	if err != nil {
		return err
	}
	switch ix := ix.(type) {
	case *solsystem.CreateAccount:
		return createAccount(ctx, accounts, *ix.Lamports, *ix.Space, *ix.Owner)
	case *solsystem.Transfer:
		return transfer(ctx, accounts, *ix.Lamports)
	}
	return errors.Wrapf(errors.ErrInvalidInstructionData, "unexpected %T", ix)
}

func createAccount(ctx context.Context, accounts []*tokenswap.AccountInfo, lamports, space uint64, owner solana.PublicKey) error {
	iter := tokenswap.NewAccounts(accounts)
	from, err := iter.Next()
	if err != nil {
		return err
	}
	to, err := iter.Next()
	if err != nil {
		return err
	}

	if !to.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "new account %s", to.Key)
	}
	if to.Lamports != 0 || len(to.Data) != 0 || !to.Owner.Equals(solana.SystemProgramID) {
		return errors.Wrapf(ErrAccountAlreadyInUse, "account %s", to.Key)
	}
	if space > MaxPermittedDataLength {
		return errors.Wrapf(errors.ErrInvalidArgument, "space %d exceeds %d", space, MaxPermittedDataLength)
	}
	if err := move(from, to, lamports); err != nil {
		return err
	}
	to.Data = make([]byte, space)
	to.Owner = owner

	tokenswap.GetLogger(ctx).Debug("create account",
		"address", to.Key.String(), "owner", owner.String(), "space", space, "lamports", lamports)
	return nil
}

func transfer(ctx context.Context, accounts []*tokenswap.AccountInfo, lamports uint64) error {
	iter := tokenswap.NewAccounts(accounts)
	from, err := iter.Next()
	if err != nil {
		return err
	}
	to, err := iter.Next()
	if err != nil {
		return err
	}
	if err := move(from, to, lamports); err != nil {
		return err
	}
	tokenswap.GetLogger(ctx).Debug("transfer",
		"from", from.Key.String(), "to", to.Key.String(), "lamports", lamports)
	return nil
}

// move debits a system owned, data free, signing account.
func move(from, to *tokenswap.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "from %s", from.Key)
	}
	if len(from.Data) != 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "from must not carry data")
	}
	if lamports > from.Lamports {
		return errors.Wrapf(ErrResultWithNegativeLamports, "have %d, need %d", from.Lamports, lamports)
	}
	if to.Lamports+lamports < to.Lamports {
		return errors.Wrap(errors.ErrInvalidArgument, "recipient balance overflow")
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
