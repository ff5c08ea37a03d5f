package tokenswap

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/pda"
)

// Program is a deterministic state transition function hosted by the ledger.
//
// Process is given the accounts listed by the instruction, in order, and the
// raw instruction data. A program may only modify data of the accounts it owns
// and may only debit accounts it owns. Any returned error aborts the whole
// transaction.
type Program interface {
	Process(ctx context.Context, env Env, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx context.Context, env Env, accounts []*AccountInfo, data []byte) error

// Process calls f.
func (f ProgramFunc) Process(ctx context.Context, env Env, accounts []*AccountInfo, data []byte) error {
	return f(ctx, env, accounts, data)
}

// Env is provided by the ledger to an executing program.
type Env interface {
	// ProgramID returns the id the running program was invoked as.
	ProgramID() solana.PublicKey

	// Invoke executes an instruction of another program synchronously. All
	// accounts the instruction refers to must be present in given list.
	// Signer and writable privileges of the caller are extended to the
	// callee, but never escalated.
	Invoke(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo) error

	// InvokeSigned works like Invoke but additionally grants signer
	// privilege to each program controlled address proven by given proofs.
	InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo, proofs ...pda.Proof) error
}

// Registry is implemented by a ledger that programs can be registered with.
type Registry interface {
	Register(id solana.PublicKey, p Program) error
}
