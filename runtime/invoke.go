package runtime

import (
	"bytes"
	"context"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/pda"
)

// MaxCallDepth is the deepest program invocation stack, counting the top
// level instruction.
const MaxCallDepth = 4

// snapshot is the state of an account before a program runs.
type snapshot struct {
	lamports   uint64
	owner      solana.PublicKey
	executable bool
	data       []byte
}

func takeSnapshot(acc *tokenswap.Account) snapshot {
	return snapshot{
		lamports:   acc.Lamports,
		owner:      acc.Owner,
		executable: acc.Executable,
		data:       append([]byte(nil), acc.Data...),
	}
}

// frame is the environment of a single running program. It implements
// tokenswap.Env.
type frame struct {
	ledger    *Ledger
	programID solana.PublicKey
	depth     int
	// accounts the program was invoked with, by address.
	accounts map[solana.PublicKey]*tokenswap.AccountInfo
	// pre holds account state as of the start of the program, updated
	// after each nested invocation.
	pre map[solana.PublicKey]snapshot
	// entry is the lamport total of all accounts when the program started.
	entry lamportSum
}

// lamportSum is a 128 bit sum of balances.
type lamportSum struct {
	hi, lo uint64
}

func (s *lamportSum) add(v uint64) {
	var carry uint64
	s.lo, carry = bits.Add64(s.lo, v, 0)
	s.hi += carry
}

var _ tokenswap.Env = (*frame)(nil)

func (f *frame) ProgramID() solana.PublicKey {
	return f.programID
}

func (f *frame) Invoke(ctx context.Context, ix solana.Instruction, accounts []*tokenswap.AccountInfo) error {
	return f.InvokeSigned(ctx, ix, accounts)
}

func (f *frame) InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*tokenswap.AccountInfo, proofs ...pda.Proof) error {
	if f.depth >= MaxCallDepth {
		return errors.Wrapf(errors.ErrCallDepth, "depth %d", f.depth)
	}

	derived := make(map[solana.PublicKey]bool, len(proofs))
	for _, p := range proofs {
		addr, err := p.Address(f.programID)
		if err != nil {
			return errors.Wrap(errors.ErrPrivilegeEscalation, err.Error())
		}
		derived[addr] = true
	}

	passed := make(map[solana.PublicKey]bool, len(accounts))
	for _, a := range accounts {
		if _, ok := f.accounts[a.Key]; !ok {
			return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s was not given to the caller", a.Key)
		}
		passed[a.Key] = true
	}

	callee := ix.ProgramID()
	if _, ok := f.accounts[callee]; !ok {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "program %s was not given to the caller", callee)
	}

	metas := ix.Accounts()
	infos := make([]*tokenswap.AccountInfo, 0, len(metas))
	for _, m := range metas {
		caller, ok := f.accounts[m.PublicKey]
		if !ok || !passed[m.PublicKey] {
			return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not passed to invoke", m.PublicKey)
		}
		if m.IsWritable && !caller.IsWritable {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "%s is not writable", m.PublicKey)
		}
		if m.IsSigner && !caller.IsSigner && !derived[m.PublicKey] {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "%s did not sign", m.PublicKey)
		}
		infos = append(infos, &tokenswap.AccountInfo{
			Key:        m.PublicKey,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    caller.Account,
		})
	}
	data, err := ix.Data()
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
	}

	// Changes the caller made so far must be valid before the callee sees
	// them.
	for _, info := range infos {
		if err := f.check(info.Key, f.pre[info.Key]); err != nil {
			return err
		}
	}

	if err := f.ledger.run(ctx, f.depth+1, callee, infos, data); err != nil {
		return err
	}

	// The callee verified its own changes. Account state as of now is the
	// baseline the caller is checked against.
	for _, info := range infos {
		f.pre[info.Key] = takeSnapshot(info.Account)
	}
	return nil
}

// run executes a program and verifies the changes it made.
func (l *Ledger) run(ctx context.Context, depth int, programID solana.PublicKey, infos []*tokenswap.AccountInfo, data []byte) error {
	prog, ok := l.programs[programID]
	if !ok {
		return errors.Wrapf(errors.ErrUnsupportedProgram, "%s", programID)
	}

	f := &frame{
		ledger:    l,
		programID: programID,
		depth:     depth,
		accounts:  make(map[solana.PublicKey]*tokenswap.AccountInfo, len(infos)),
		pre:       make(map[solana.PublicKey]snapshot, len(infos)),
	}
	for _, info := range infos {
		if prev, ok := f.accounts[info.Key]; ok {
			// The same account listed twice carries the union of
			// privileges.
			merged := *prev
			merged.IsSigner = prev.IsSigner || info.IsSigner
			merged.IsWritable = prev.IsWritable || info.IsWritable
			f.accounts[info.Key] = &merged
			continue
		}
		f.accounts[info.Key] = info
		f.pre[info.Key] = takeSnapshot(info.Account)
		f.entry.add(info.Account.Lamports)
	}

	ctx = tokenswap.WithLogInfo(ctx, "program", programID.String(), "depth", depth)
	tokenswap.Logf(ctx, "%s invoke [%d]", programID, depth)
	if err := process(ctx, prog, f, infos, data); err != nil {
		tokenswap.Logf(ctx, "%s failed: %s", programID, err)
		return err
	}
	if err := f.verify(); err != nil {
		return err
	}
	tokenswap.Logf(ctx, "%s success", programID)
	return nil
}

// process calls the program, turning a panic into ErrPanic.
func process(ctx context.Context, prog tokenswap.Program, env tokenswap.Env, infos []*tokenswap.AccountInfo, data []byte) (err error) {
	defer errors.Recover(&err)
	return prog.Process(ctx, env, infos, data)
}

// verify ensures the program only changed what it is allowed to. Nested
// invocations move lamports only between accounts of this frame, so the total
// must match the one the program started with.
func (f *frame) verify() error {
	var total lamportSum
	for key, pre := range f.pre {
		if err := f.check(key, pre); err != nil {
			return err
		}
		total.add(f.accounts[key].Lamports)
	}
	if total != f.entry {
		return errors.Wrapf(errors.ErrUnbalancedInstruction, "program %s", f.programID)
	}
	return nil
}

// check validates the change of a single account since pre.
func (f *frame) check(key solana.PublicKey, pre snapshot) error {
	info := f.accounts[key]
	post := info.Account

	if !pre.owner.Equals(post.Owner) {
		if !info.IsWritable || !pre.owner.Equals(f.programID) || pre.executable || !isZeroed(post.Data) {
			return errors.Wrapf(errors.ErrModifiedProgramID, "account %s", key)
		}
	}
	if pre.executable != post.Executable {
		return errors.Wrapf(errors.ErrModifiedProgramID, "executable flag of %s", key)
	}
	if pre.lamports != post.Lamports {
		if !info.IsWritable {
			return errors.Wrapf(errors.ErrReadonlyLamportChange, "account %s", key)
		}
		if post.Lamports < pre.lamports && !pre.owner.Equals(f.programID) {
			return errors.Wrapf(errors.ErrExternalLamportSpend, "account %s", key)
		}
	}
	if !bytes.Equal(pre.data, post.Data) {
		if !info.IsWritable {
			return errors.Wrapf(errors.ErrReadonlyDataModified, "account %s", key)
		}
		if !pre.owner.Equals(f.programID) {
			return errors.Wrapf(errors.ErrExternalDataModified, "account %s", key)
		}
	}
	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
