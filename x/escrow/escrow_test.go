package escrow_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/client"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/rent"
	"github.com/iov-one/tokenswap/swaptest"
	"github.com/iov-one/tokenswap/swaptest/assert"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/iov-one/tokenswap/x/token"
	"github.com/stretchr/testify/require"
)

const supply = 1_000_000

func exchangeAccounts(m *swaptest.Market, opened *escrow.Record, record solana.PublicKey) escrow.ExchangeAccounts {
	return escrow.ExchangeAccounts{
		Taker:                m.Taker.PublicKey(),
		TakerSending:         m.TakerB,
		TakerReceiving:       m.TakerA,
		Custody:              opened.Custody,
		Initializer:          opened.Initializer,
		InitializerReceiving: opened.Receiving,
		Record:               record,
	}
}

func TestOpenEscrow(t *testing.T) {
	m := swaptest.NewMarket(t, supply)
	opened := m.Open(t, supply, supply)

	record, err := m.Escrow(opened.Record)
	require.NoError(t, err)
	require.Equal(t, m.Initializer.PublicKey(), record.Initializer)
	require.Equal(t, opened.Custody, record.Custody)
	require.Equal(t, m.InitializerB, record.Receiving)
	require.Equal(t, uint64(supply), record.ExpectedAmount)

	auth, err := escrow.Authority(escrow.DefaultProgramID)
	require.NoError(t, err)
	custody, err := m.TokenAccount(opened.Custody)
	require.NoError(t, err)
	require.Equal(t, auth.Address, custody.Owner)
	require.Equal(t, m.MintA, custody.Mint)
	require.Equal(t, uint64(supply), custody.Amount)
	require.Equal(t, uint64(0), m.TokenBalance(t, m.InitializerA))

	require.Contains(t, opened.Result.Logs, "Program log: Instruction: Init Escrow")
}

func TestExchange(t *testing.T) {
	m := swaptest.NewMarket(t, supply)
	opened := m.Open(t, supply, supply)
	ctx := context.Background()

	lamports := m.LamportBalance(t, m.Initializer.PublicKey())
	takerLamports := m.LamportBalance(t, m.Taker.PublicKey())

	res, err := m.Take(ctx, m.Taker, opened.Record, m.TakerB, m.TakerA, supply)
	require.NoError(t, err)
	require.Contains(t, res.Logs, "Program log: Instruction: Exchange Escrow")

	require.Equal(t, uint64(supply), m.TokenBalance(t, m.InitializerB))
	require.Equal(t, uint64(supply), m.TokenBalance(t, m.TakerA))
	require.Equal(t, uint64(0), m.TokenBalance(t, m.TakerB))
	require.Equal(t, uint64(0), m.TokenBalance(t, m.InitializerA))

	// Custody and record are closed and their rent is returned.
	r := rent.Default()
	require.Equal(t, uint64(2_039_280), r.MinimumBalance(token.AccountLen))
	require.Equal(t, uint64(1_621_680), r.MinimumBalance(escrow.RecordLen))
	require.Equal(t, lamports+2_039_280+1_621_680, m.LamportBalance(t, m.Initializer.PublicKey()))
	require.Equal(t, takerLamports, m.LamportBalance(t, m.Taker.PublicKey()))

	_, err = m.Account(opened.Record)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = m.Account(opened.Custody)
	assert.IsErr(t, errors.ErrNotFound, err)
	require.Contains(t, res.Changed, opened.Record)
	require.Contains(t, res.Changed, opened.Custody)
}

func TestExchangeFailures(t *testing.T) {
	ctx := context.Background()

	cases := map[string]struct {
		// instruction returns accounts and amount of a failing exchange.
		instruction func(t *testing.T, m *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64)
		signers     func(m *swaptest.Market) []solana.PrivateKey
		wantErr     *errors.Error
		wantCode    uint64
	}{
		"taker expects less than deposited": {
			instruction: func(_ *testing.T, _ *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				return a, supply - 1
			},
			wantErr:  escrow.ErrExpectedAmountMismatch,
			wantCode: 2,
		},
		"taker expects more than deposited": {
			instruction: func(_ *testing.T, _ *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				return a, supply + 1
			},
			wantErr:  escrow.ErrExpectedAmountMismatch,
			wantCode: 2,
		},
		"payment redirected to the taker": {
			instruction: func(_ *testing.T, m *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				a.InitializerReceiving = m.TakerB
				return a, supply
			},
			wantErr:  errors.ErrInvalidAccountData,
			wantCode: 4 << 32,
		},
		"rent paid to the taker": {
			instruction: func(_ *testing.T, m *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				a.Initializer = m.Taker.PublicKey()
				return a, supply
			},
			wantErr:  errors.ErrInvalidAccountData,
			wantCode: 4 << 32,
		},
		"custody of another escrow": {
			instruction: func(t *testing.T, m *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				other := m.Open(t, 0, 1)
				a.Custody = other.Custody
				return a, 0
			},
			wantErr:  errors.ErrInvalidAccountData,
			wantCode: 4 << 32,
		},
		"taker does not hold enough to pay": {
			instruction: func(t *testing.T, m *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				require.NoError(t, m.Transfer(context.Background(), m.Taker, m.TakerB, m.InitializerB, 1))
				return a, supply
			},
			wantErr:  token.ErrInsufficientFunds,
			wantCode: 1,
		},
		"deposit released to an account of another mint": {
			instruction: func(t *testing.T, m *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				wrong, err := m.CreateTokenAccount(context.Background(), m.Taker, m.MintB, m.Taker.PublicKey())
				require.NoError(t, err)
				a.TakerReceiving = wrong
				return a, supply
			},
			wantErr:  token.ErrMintMismatch,
			wantCode: 3,
		},
		"taker did not sign": {
			instruction: func(_ *testing.T, _ *swaptest.Market, a escrow.ExchangeAccounts) (escrow.ExchangeAccounts, uint64) {
				return a, supply
			},
			signers: func(m *swaptest.Market) []solana.PrivateKey { return []solana.PrivateKey{m.Initializer} },
			// The transaction is rejected before any program runs.
			wantErr: errors.ErrSignatureFailure,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := swaptest.NewMarket(t, supply)
			opened := m.Open(t, supply, supply)
			record, err := m.Escrow(opened.Record)
			require.NoError(t, err)

			a, amount := tc.instruction(t, m, exchangeAccounts(m, record, opened.Record))

			balances := map[solana.PublicKey]uint64{}
			for _, addr := range []solana.PublicKey{m.InitializerB, m.TakerA, m.TakerB, opened.Custody} {
				balances[addr] = m.TokenBalance(t, addr)
			}
			lamports := m.LamportBalance(t, m.Initializer.PublicKey())

			ix, err := escrow.NewExchangeInstruction(m.ProgramID(), a, amount)
			require.NoError(t, err)
			signers := []solana.PrivateKey{m.Taker}
			if tc.signers != nil {
				signers = tc.signers(m)
			}
			_, err = m.SubmitTx(ctx, signers, ix)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantCode != 0 {
				assert.ProgramCode(t, tc.wantCode, err)
			} else {
				assert.RuntimeErr(t, err)
			}

			// Nothing moved.
			for addr, want := range balances {
				require.Equal(t, want, m.TokenBalance(t, addr), "balance of %s", addr)
			}
			require.Equal(t, lamports, m.LamportBalance(t, m.Initializer.PublicKey()))
			_, err = m.Escrow(opened.Record)
			require.NoError(t, err)
		})
	}
}

func TestExchangeReplay(t *testing.T) {
	m := swaptest.NewMarket(t, 2*supply)
	opened := m.Open(t, supply, supply)
	ctx := context.Background()

	record, err := m.Escrow(opened.Record)
	require.NoError(t, err)
	ix, err := escrow.NewExchangeInstruction(m.ProgramID(), exchangeAccounts(m, record, opened.Record), supply)
	require.NoError(t, err)

	_, err = m.SubmitTx(ctx, []solana.PrivateKey{m.Taker}, ix)
	require.NoError(t, err)

	// Custody no longer exists, so the second exchange fails before it
	// reaches the record.
	_, err = m.SubmitTx(ctx, []solana.PrivateKey{m.Taker}, ix)
	assert.IsErr(t, errors.ErrIncorrectProgramID, err)
	require.Equal(t, uint64(supply), m.TokenBalance(t, m.InitializerB))
	require.Equal(t, uint64(supply), m.TokenBalance(t, m.TakerB))
}

func TestInitEscrowFailures(t *testing.T) {
	ctx := context.Background()
	m := swaptest.NewMarket(t, supply)
	opened := m.Open(t, supply/2, supply)

	// A second init over an open record is rejected.
	again := escrow.NewInitEscrowInstruction(m.ProgramID(), escrow.InitAccounts{
		Initializer: m.Initializer.PublicKey(),
		Custody:     m.InitializerA,
		Receiving:   m.InitializerB,
		Record:      opened.Record,
	}, 1)
	_, err := m.SubmitTx(ctx, []solana.PrivateKey{m.Initializer}, again)
	assert.IsErr(t, errors.ErrAccountAlreadyInitialized, err)

	record, err := m.Escrow(opened.Record)
	require.NoError(t, err)
	require.Equal(t, opened.Custody, record.Custody)
	require.Equal(t, uint64(supply), record.ExpectedAmount)

	// A zero expected amount fails the whole open transaction.
	_, err = m.OpenEscrow(ctx, client.Offer{
		Initializer: m.Initializer,
		Source:      m.InitializerA,
		Deposit:     supply / 2,
		Receiving:   m.InitializerB,
		Expected:    0,
	})
	assert.IsErr(t, escrow.ErrInvalidAmount, err)
	assert.ProgramCode(t, 4, err)
	require.Equal(t, uint64(supply/2), m.TokenBalance(t, m.InitializerA))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	m := swaptest.NewMarket(t, supply)
	opened := m.Open(t, supply, supply)
	lamports := m.LamportBalance(t, m.Initializer.PublicKey())

	// Only the initializer can cancel.
	stranger := swaptest.NewKey()
	ix, err := escrow.NewCancelEscrowInstruction(m.ProgramID(), escrow.CancelAccounts{
		Initializer: m.Taker.PublicKey(),
		Refund:      m.TakerA,
		Custody:     opened.Custody,
		Record:      opened.Record,
	})
	require.NoError(t, err)
	_, err = m.SubmitTx(ctx, []solana.PrivateKey{m.Taker}, ix)
	assert.IsErr(t, errors.ErrInvalidAccountData, err)
	_, err = m.Cancel(ctx, stranger, opened.Record, m.InitializerA)
	assert.IsErr(t, errors.ErrInvalidAccountData, err)

	res, err := m.Cancel(ctx, m.Initializer, opened.Record, m.InitializerA)
	require.NoError(t, err)
	require.Contains(t, res.Logs, "Program log: Instruction: Cancel Escrow")
	require.Equal(t, uint64(supply), m.TokenBalance(t, m.InitializerA))
	require.Equal(t, lamports+2_039_280+1_621_680, m.LamportBalance(t, m.Initializer.PublicKey()))

	_, err = m.Account(opened.Record)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = m.Cancel(ctx, m.Initializer, opened.Record, m.InitializerA)
	assert.IsErr(t, errors.ErrNotFound, err)
}
