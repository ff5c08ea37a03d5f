package swaptest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/client"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/escrow"
)

// Market is a ledger with two tokens and two traders. The initializer holds
// Supply of token A and wants token B, the taker holds Supply of token B.
type Market struct {
	*client.Client
	Ledger *runtime.Ledger

	// Authority controls both mints.
	Authority solana.PrivateKey
	MintA     solana.PublicKey
	MintB     solana.PublicKey

	Initializer solana.PrivateKey
	// InitializerA holds the initializer's A tokens.
	InitializerA solana.PublicKey
	// InitializerB receives the B tokens paid by the taker.
	InitializerB solana.PublicKey

	Taker solana.PrivateKey
	// TakerA receives the A tokens released from custody.
	TakerA solana.PublicKey
	// TakerB holds the taker's B tokens.
	TakerB solana.PublicKey
}

// NewMarket sets up a market on a new in memory ledger, minting supply
// tokens of each kind.
func NewMarket(t testing.TB, supply uint64) *Market {
	t.Helper()
	m := &Market{
		Authority:   NewKey(),
		Initializer: NewKey(),
		Taker:       NewKey(),
	}
	m.Ledger = NewLedger(t, m.Authority, m.Initializer, m.Taker)
	m.Client = client.NewClient(m.Ledger, escrow.DefaultProgramID)

	ctx := context.Background()
	var err error
	if m.MintA, err = m.CreateMint(ctx, m.Authority, m.Authority, 0); err != nil {
		t.Fatalf("mint A: %+v", err)
	}
	if m.MintB, err = m.CreateMint(ctx, m.Authority, m.Authority, 0); err != nil {
		t.Fatalf("mint B: %+v", err)
	}

	accounts := []struct {
		dst   *solana.PublicKey
		mint  solana.PublicKey
		owner solana.PrivateKey
	}{
		{&m.InitializerA, m.MintA, m.Initializer},
		{&m.InitializerB, m.MintB, m.Initializer},
		{&m.TakerA, m.MintA, m.Taker},
		{&m.TakerB, m.MintB, m.Taker},
	}
	for _, a := range accounts {
		if *a.dst, err = m.CreateTokenAccount(ctx, a.owner, a.mint, a.owner.PublicKey()); err != nil {
			t.Fatalf("token account: %+v", err)
		}
	}

	if err := m.MintTo(ctx, m.Authority, m.MintA, m.InitializerA, supply); err != nil {
		t.Fatalf("mint A supply: %+v", err)
	}
	if err := m.MintTo(ctx, m.Authority, m.MintB, m.TakerB, supply); err != nil {
		t.Fatalf("mint B supply: %+v", err)
	}
	return m
}

// TokenBalance returns the amount held by a token account. A closed
// account holds nothing.
func (m *Market) TokenBalance(t testing.TB, addr solana.PublicKey) uint64 {
	t.Helper()
	if lamports, err := m.Lamports(addr); err != nil {
		t.Fatalf("account %s: %+v", addr, err)
	} else if lamports == 0 {
		return 0
	}
	acc, err := m.TokenAccount(addr)
	if err != nil {
		t.Fatalf("token account %s: %+v", addr, err)
	}
	return acc.Amount
}

// LamportBalance returns the lamports held by an address.
func (m *Market) LamportBalance(t testing.TB, addr solana.PublicKey) uint64 {
	t.Helper()
	lamports, err := m.Lamports(addr)
	if err != nil {
		t.Fatalf("account %s: %+v", addr, err)
	}
	return lamports
}

// Open opens an escrow offering deposit A tokens for expected B tokens.
func (m *Market) Open(t testing.TB, deposit, expected uint64) *client.Opened {
	t.Helper()
	opened, err := m.OpenEscrow(context.Background(), client.Offer{
		Initializer: m.Initializer,
		Source:      m.InitializerA,
		Deposit:     deposit,
		Receiving:   m.InitializerB,
		Expected:    expected,
	})
	if err != nil {
		t.Fatalf("open escrow: %+v", err)
	}
	return opened
}
