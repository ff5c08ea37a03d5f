package escrow

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/pda"
	"github.com/iov-one/tokenswap/rent"
	"github.com/iov-one/tokenswap/swaptest/assert"
	"github.com/iov-one/tokenswap/x/token"
)

// invocation is a call made by a handler through the environment.
type invocation struct {
	programID solana.PublicKey
	data      []byte
	proofs    []pda.Proof
}

// recordingEnv runs nothing and records every call. It can be told to fail
// a call.
type recordingEnv struct {
	programID solana.PublicKey
	calls     []invocation
	failAt    int
	failWith  error
}

func newRecordingEnv() *recordingEnv {
	return &recordingEnv{programID: DefaultProgramID, failAt: -1}
}

func (e *recordingEnv) ProgramID() solana.PublicKey {
	return e.programID
}

func (e *recordingEnv) Invoke(ctx context.Context, ix solana.Instruction, accounts []*tokenswap.AccountInfo) error {
	return e.InvokeSigned(ctx, ix, accounts)
}

func (e *recordingEnv) InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*tokenswap.AccountInfo, proofs ...pda.Proof) error {
	if len(e.calls) == e.failAt {
		return e.failWith
	}
	data, err := ix.Data()
	if err != nil {
		return err
	}
	e.calls = append(e.calls, invocation{programID: ix.ProgramID(), data: data, proofs: proofs})
	return nil
}

func rentInfo(t testing.TB) *tokenswap.AccountInfo {
	t.Helper()
	acc, err := rent.Account(rent.Default())
	assert.Nil(t, err)
	return &tokenswap.AccountInfo{Key: solana.SysVarRentPubkey, Account: acc}
}

func keyInfo(signer bool) *tokenswap.AccountInfo {
	return &tokenswap.AccountInfo{
		Key:        solana.NewWallet().PublicKey(),
		IsSigner:   signer,
		IsWritable: true,
		Account:    &tokenswap.Account{Lamports: 1_000_000_000, Owner: solana.SystemProgramID},
	}
}

func programInfo(id solana.PublicKey) *tokenswap.AccountInfo {
	return &tokenswap.AccountInfo{
		Key:     id,
		Account: &tokenswap.Account{Lamports: 1, Executable: true},
	}
}

func tokenInfo(t testing.TB, owner solana.PublicKey, amount uint64) *tokenswap.AccountInfo {
	t.Helper()
	data := make([]byte, token.AccountLen)
	acc := &token.Account{
		Mint:   solana.NewWallet().PublicKey(),
		Owner:  owner,
		Amount: amount,
		State:  token.StateInitialized,
	}
	assert.Nil(t, token.PackAccount(acc, data))
	return &tokenswap.AccountInfo{
		Key:        solana.NewWallet().PublicKey(),
		IsWritable: true,
		Account: &tokenswap.Account{
			Lamports: rent.Default().MinimumBalance(token.AccountLen),
			Owner:    solana.TokenProgramID,
			Data:     data,
		},
	}
}

func recordInfo(lamports uint64, r *Record) *tokenswap.AccountInfo {
	data := make([]byte, RecordLen)
	if r != nil {
		if err := Pack(r, data); err != nil {
			panic(err)
		}
	}
	return &tokenswap.AccountInfo{
		Key:        solana.NewWallet().PublicKey(),
		IsWritable: true,
		Account:    &tokenswap.Account{Lamports: lamports, Owner: DefaultProgramID, Data: data},
	}
}

func TestProcessRejectsInvalidInstruction(t *testing.T) {
	err := Processor{}.Process(context.Background(), newRecordingEnv(), nil, []byte{7})
	assert.IsErr(t, ErrInvalidInstruction, err)
	assert.ProgramCode(t, 1<<32, err)
}

func TestInitEscrow(t *testing.T) {
	exempt := rent.Default().MinimumBalance(RecordLen)

	// accounts returns a valid account list that a test case can break.
	accounts := func(t *testing.T) []*tokenswap.AccountInfo {
		initializer := keyInfo(true)
		return []*tokenswap.AccountInfo{
			initializer,
			tokenInfo(t, initializer.Key, 1_000_000),
			tokenInfo(t, initializer.Key, 0),
			recordInfo(exempt, nil),
			rentInfo(t),
			programInfo(solana.TokenProgramID),
		}
	}

	cases := map[string]struct {
		amount  uint64
		mutate  func([]*tokenswap.AccountInfo) []*tokenswap.AccountInfo
		wantErr *errors.Error
	}{
		"ok": {
			amount: 1_000_000,
		},
		"not enough accounts": {
			amount:  1,
			mutate:  func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo { return a[:5] },
			wantErr: errors.ErrNotEnoughAccountKeys,
		},
		"initializer did not sign": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[0].IsSigner = false
				return a
			},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"receiving account not owned by the token program": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[2].Owner = solana.SystemProgramID
				return a
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"not the rent sysvar": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[4] = keyInfo(false)
				return a
			},
			wantErr: errors.ErrInvalidArgument,
		},
		"record not rent exempt": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[3].Lamports = exempt - 1
				return a
			},
			wantErr: ErrNotRentExempt,
		},
		"record already initialized": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[3] = recordInfo(exempt, &Record{IsInitialized: true, ExpectedAmount: 5})
				return a
			},
			wantErr: errors.ErrAccountAlreadyInitialized,
		},
		"record not owned by the program": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[3].Owner = solana.SystemProgramID
				return a
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"wrong token program": {
			amount: 1,
			mutate: func(a []*tokenswap.AccountInfo) []*tokenswap.AccountInfo {
				a[5] = programInfo(solana.NewWallet().PublicKey())
				return a
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"zero amount": {
			amount:  0,
			wantErr: ErrInvalidAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			list := accounts(t)
			if tc.mutate != nil {
				list = tc.mutate(list)
			}
			env := newRecordingEnv()
			err := Processor{}.Process(context.Background(), env, list, Encode(InitEscrow{Amount: tc.amount}))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				assert.Equal(t, 0, len(env.calls))
				return
			}
			assert.Nil(t, err)

			r, err := Unpack(list[3].Data)
			assert.Nil(t, err)
			assert.Equal(t, list[0].Key, r.Initializer)
			assert.Equal(t, list[1].Key, r.Custody)
			assert.Equal(t, list[2].Key, r.Receiving)
			assert.Equal(t, tc.amount, r.ExpectedAmount)

			auth, err := Authority(DefaultProgramID)
			assert.Nil(t, err)
			setOwner, err := token.NewSetAuthorityInstruction(list[1].Key, list[0].Key, token.AuthorityAccountOwner, &auth.Address).Data()
			assert.Nil(t, err)
			assert.Equal(t, 1, len(env.calls))
			assert.Equal(t, solana.TokenProgramID, env.calls[0].programID)
			assert.Equal(t, setOwner, env.calls[0].data)
			assert.Equal(t, 0, len(env.calls[0].proofs))
		})
	}
}

// exchangeFixture is an open escrow of 1000 deposited tokens expecting 50.
type exchangeFixture struct {
	accounts []*tokenswap.AccountInfo
	auth     pda.Authority
}

func newExchangeFixture(t *testing.T) *exchangeFixture {
	t.Helper()
	auth, err := Authority(DefaultProgramID)
	assert.Nil(t, err)

	taker := keyInfo(true)
	initializer := keyInfo(false)
	custody := tokenInfo(t, auth.Address, 1000)
	receiving := tokenInfo(t, initializer.Key, 0)
	record := recordInfo(rent.Default().MinimumBalance(RecordLen), &Record{
		IsInitialized:  true,
		Initializer:    initializer.Key,
		Custody:        custody.Key,
		Receiving:      receiving.Key,
		ExpectedAmount: 50,
	})
	return &exchangeFixture{
		auth: auth,
		accounts: []*tokenswap.AccountInfo{
			taker,
			tokenInfo(t, taker.Key, 50),
			tokenInfo(t, taker.Key, 0),
			custody,
			initializer,
			receiving,
			record,
			programInfo(solana.TokenProgramID),
			{Key: auth.Address, Account: &tokenswap.Account{Owner: solana.SystemProgramID}},
		},
	}
}

func TestExchangeValidation(t *testing.T) {
	cases := map[string]struct {
		amount  uint64
		mutate  func(*testing.T, []*tokenswap.AccountInfo)
		wantErr *errors.Error
	}{
		"taker did not sign": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[0].IsSigner = false },
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"custody not a token account": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[3].Owner = solana.SystemProgramID },
			wantErr: errors.ErrIncorrectProgramID,
		},
		"amount below deposit": {
			amount:  999,
			wantErr: ErrExpectedAmountMismatch,
		},
		"amount above deposit": {
			amount:  1001,
			wantErr: ErrExpectedAmountMismatch,
		},
		"record not owned by the program": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[6].Owner = solana.SystemProgramID },
			wantErr: errors.ErrIncorrectProgramID,
		},
		"record closed": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[6].Data = nil },
			wantErr: errors.ErrInvalidAccountData,
		},
		"record uninitialized": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[6].Data = make([]byte, RecordLen) },
			wantErr: errors.ErrInvalidAccountData,
		},
		"other custody": {
			amount: 1000,
			mutate: func(t *testing.T, a []*tokenswap.AccountInfo) {
				a[3] = tokenInfo(t, a[3].Key, 1000)
			},
			wantErr: errors.ErrInvalidAccountData,
		},
		"other initializer": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[4] = keyInfo(false) },
			wantErr: errors.ErrInvalidAccountData,
		},
		"other receiving account": {
			amount: 1000,
			mutate: func(t *testing.T, a []*tokenswap.AccountInfo) {
				a[5] = tokenInfo(t, a[0].Key, 0)
			},
			wantErr: errors.ErrInvalidAccountData,
		},
		"wrong token program": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[7] = programInfo(solana.NewWallet().PublicKey()) },
			wantErr: errors.ErrIncorrectProgramID,
		},
		"wrong authority": {
			amount:  1000,
			mutate:  func(_ *testing.T, a []*tokenswap.AccountInfo) { a[8] = keyInfo(false) },
			wantErr: errors.ErrInvalidArgument,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newExchangeFixture(t)
			if tc.mutate != nil {
				tc.mutate(t, f.accounts)
			}
			env := newRecordingEnv()
			err := Processor{}.Process(context.Background(), env, f.accounts, Encode(Exchange{Amount: tc.amount}))
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, 0, len(env.calls))
		})
	}
}

func TestExchangeInvocations(t *testing.T) {
	f := newExchangeFixture(t)
	env := newRecordingEnv()
	a := f.accounts
	initializerLamports := a[4].Lamports
	recordLamports := a[6].Lamports

	err := Processor{}.Process(context.Background(), env, a, Encode(Exchange{Amount: 1000}))
	assert.Nil(t, err)

	data := func(ix solana.Instruction) []byte {
		raw, err := ix.Data()
		assert.Nil(t, err)
		return raw
	}
	want := []invocation{
		{programID: solana.TokenProgramID, data: data(token.NewTransferInstruction(a[1].Key, a[5].Key, a[0].Key, 50))},
		{programID: solana.TokenProgramID, data: data(token.NewTransferInstruction(a[3].Key, a[2].Key, f.auth.Address, 1000)), proofs: []pda.Proof{f.auth.Proof()}},
		{programID: solana.TokenProgramID, data: data(token.NewCloseAccountInstruction(a[3].Key, a[4].Key, f.auth.Address)), proofs: []pda.Proof{f.auth.Proof()}},
	}
	assert.Equal(t, want, env.calls)

	// The record is closed into the initializer.
	assert.Equal(t, initializerLamports+recordLamports, a[4].Lamports)
	assert.Equal(t, uint64(0), a[6].Lamports)
	assert.Equal(t, 0, len(a[6].Data))
}

func TestExchangeStopsOnFailedInvocation(t *testing.T) {
	for step := 0; step < 3; step++ {
		f := newExchangeFixture(t)
		env := newRecordingEnv()
		env.failAt = step
		env.failWith = errors.Wrap(errors.ErrInsufficientFunds, "test")

		err := Processor{}.Process(context.Background(), env, f.accounts, Encode(Exchange{Amount: 1000}))
		assert.IsErr(t, errors.ErrInsufficientFunds, err)
		assert.Equal(t, step, len(env.calls))
		// The record stays open for the ledger to roll back.
		assert.Equal(t, RecordLen, len(f.accounts[6].Data))
	}
}

func TestCancelValidation(t *testing.T) {
	// accounts reuses the exchange fixture: initializer, refund, custody,
	// record, token program, authority.
	accounts := func(t *testing.T) []*tokenswap.AccountInfo {
		f := newExchangeFixture(t)
		initializer := f.accounts[4]
		initializer.IsSigner = true
		return []*tokenswap.AccountInfo{
			initializer,
			tokenInfo(t, initializer.Key, 0),
			f.accounts[3],
			f.accounts[6],
			f.accounts[7],
			f.accounts[8],
		}
	}

	cases := map[string]struct {
		mutate  func([]*tokenswap.AccountInfo)
		wantErr *errors.Error
	}{
		"ok": {},
		"initializer did not sign": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[0].IsSigner = false },
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"stranger": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[0] = keyInfo(true) },
			wantErr: errors.ErrInvalidAccountData,
		},
		"other custody": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[2] = keyInfo(false) },
			wantErr: errors.ErrInvalidAccountData,
		},
		"record not owned by the program": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[3].Owner = solana.SystemProgramID },
			wantErr: errors.ErrIncorrectProgramID,
		},
		"record uninitialized": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[3].Data = make([]byte, RecordLen) },
			wantErr: errors.ErrInvalidAccountData,
		},
		"wrong token program": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[4] = programInfo(solana.NewWallet().PublicKey()) },
			wantErr: errors.ErrIncorrectProgramID,
		},
		"wrong authority": {
			mutate:  func(a []*tokenswap.AccountInfo) { a[5] = keyInfo(false) },
			wantErr: errors.ErrInvalidArgument,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			list := accounts(t)
			if tc.mutate != nil {
				tc.mutate(list)
			}
			env := newRecordingEnv()
			err := Processor{}.Process(context.Background(), env, list, Encode(CancelEscrow{}))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				assert.Equal(t, 0, len(env.calls))
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, 2, len(env.calls))
			assert.Equal(t, uint64(0), list[3].Lamports)
		})
	}
}
