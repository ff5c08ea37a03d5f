package escrow

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/pda"
)

// Seed is the domain seed of the escrow authority.
const Seed = "escrow"

// DefaultProgramID is the id the escrow program is registered under unless
// configured otherwise.
var DefaultProgramID = solana.MustPublicKeyFromBase58("5wbh2RddbGsWan4S56kWwXHmRCoRG7WABGZKCgepGBJV")

// Authority returns the address that controls custody accounts of the
// escrow program with given id.
func Authority(programID solana.PublicKey) (pda.Authority, error) {
	return pda.Derive([]byte(Seed), programID)
}

// Register adds the escrow program to the ledger under given id.
func Register(r tokenswap.Registry, programID solana.PublicKey) error {
	return r.Register(programID, Processor{})
}

// Processor decodes escrow instructions and passes them to their handler.
type Processor struct{}

var _ tokenswap.Program = Processor{}

func (Processor) Process(ctx context.Context, env tokenswap.Env, accounts []*tokenswap.AccountInfo, data []byte) error {
	ix, err := Decode(data)
	if err != nil {
		return err
	}
	switch ix := ix.(type) {
	case InitEscrow:
		tokenswap.Logf(ctx, "Instruction: Init Escrow")
		return InitHandler{}.Process(ctx, env, accounts, ix)
	case Exchange:
		tokenswap.Logf(ctx, "Instruction: Exchange Escrow")
		return ExchangeHandler{}.Process(ctx, env, accounts, ix)
	case CancelEscrow:
		tokenswap.Logf(ctx, "Instruction: Cancel Escrow")
		return CancelHandler{}.Process(ctx, env, accounts, ix)
	}
	return errors.Wrapf(ErrInvalidInstruction, "unexpected %T", ix)
}

// nextAccounts takes n accounts from the beginning of the list.
func nextAccounts(accounts []*tokenswap.AccountInfo, n int) ([]*tokenswap.AccountInfo, error) {
	iter := tokenswap.NewAccounts(accounts)
	res := make([]*tokenswap.AccountInfo, n)
	for i := range res {
		acc, err := iter.Next()
		if err != nil {
			return nil, err
		}
		res[i] = acc
	}
	return res, nil
}

func checkOwner(acc *tokenswap.AccountInfo, owner solana.PublicKey) error {
	if !acc.Owner.Equals(owner) {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "%s is owned by %s", acc.Key, acc.Owner)
	}
	return nil
}

func checkTokenProgram(acc *tokenswap.AccountInfo) error {
	if !acc.Key.Equals(solana.TokenProgramID) {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "%s is not the token program", acc.Key)
	}
	return nil
}

// loadRecord reads an open escrow record owned by the running program. A
// record that was allocated but never initialized does not describe any
// escrow and is reported as invalid data.
func loadRecord(env tokenswap.Env, acc *tokenswap.AccountInfo) (*Record, error) {
	if err := checkOwner(acc, env.ProgramID()); err != nil {
		return nil, errors.Wrap(err, "escrow record")
	}
	r, err := UnpackUnchecked(acc.Data)
	if err != nil {
		return nil, err
	}
	if !r.IsInitialized {
		return nil, errors.Wrap(errors.ErrInvalidAccountData, "escrow record not initialized")
	}
	return r, nil
}

// checkAuthority derives the escrow authority and makes sure it is the
// account given.
func checkAuthority(env tokenswap.Env, acc *tokenswap.AccountInfo) (pda.Authority, error) {
	auth, err := Authority(env.ProgramID())
	if err != nil {
		return auth, err
	}
	if !acc.Key.Equals(auth.Address) {
		return auth, errors.Wrapf(errors.ErrInvalidArgument, "%s is not the escrow authority", acc.Key)
	}
	return auth, nil
}
