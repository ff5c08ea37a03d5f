package system

import (
	"github.com/gagliardetto/solana-go"
	solsystem "github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// MaxPermittedDataLength is the largest account CreateAccount allocates.
const MaxPermittedDataLength = 10 * 1024 * 1024

// Decode reads a system instruction executed with given accounts. It returns
// *solsystem.CreateAccount or *solsystem.Transfer, the only instructions this
// ledger supports.
func Decode(accounts []*tokenswap.AccountInfo, data []byte) (interface{}, error) {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, a := range accounts {
		metas[i] = solana.NewAccountMeta(a.Key, a.IsWritable, a.IsSigner)
	}
	ix, err := solsystem.DecodeInstruction(metas, data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
	}
	switch impl := ix.Impl.(type) {
	case *solsystem.CreateAccount, *solsystem.Transfer:
		return impl, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "unsupported %s",
		solsystem.InstructionIDToName(ix.TypeID.Uint32()))
}
