package swaptest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/client"
	"github.com/iov-one/tokenswap/rent"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/store/iavl"
	"github.com/iov-one/tokenswap/x/escrow"
)

// InitialLamports is the balance of every account funded by Genesis.
const InitialLamports = 10_000_000_000

// Genesis returns genesis options with default rent and given addresses
// funded with InitialLamports each.
func Genesis(t testing.TB, funded ...solana.PublicKey) tokenswap.Options {
	t.Helper()

	conf, err := json.Marshal(map[string]interface{}{
		"runtime": runtime.Configuration{Rent: rent.Default()},
	})
	if err != nil {
		t.Fatalf("cannot marshal configuration: %s", err)
	}
	accounts := make([]runtime.GenesisAccount, 0, len(funded))
	for _, addr := range funded {
		accounts = append(accounts, runtime.GenesisAccount{Address: addr, Lamports: InitialLamports})
	}
	raw, err := json.Marshal(accounts)
	if err != nil {
		t.Fatalf("cannot marshal accounts: %s", err)
	}
	return tokenswap.Options{"conf": conf, "accounts": raw}
}

// NewLedger returns an in memory ledger running the system, token and escrow
// programs with given keys funded. The escrow program is registered under
// escrow.DefaultProgramID.
func NewLedger(t testing.TB, funded ...solana.PrivateKey) *runtime.Ledger {
	t.Helper()
	return NewLedgerWithStore(t, iavl.MemCommitStore(), funded...)
}

// NewLedgerWithStore works like NewLedger, but keeps the state in db.
func NewLedgerWithStore(t testing.TB, db store.CommitKVStore, funded ...solana.PrivateKey) *runtime.Ledger {
	t.Helper()

	l, err := runtime.NewLedger(db, true)
	if err != nil {
		t.Fatalf("cannot create ledger: %s", err)
	}
	if err := client.RegisterPrograms(l, escrow.DefaultProgramID); err != nil {
		t.Fatalf("cannot register programs: %s", err)
	}
	addrs := make([]solana.PublicKey, 0, len(funded))
	for _, k := range funded {
		addrs = append(addrs, k.PublicKey())
	}
	if err := l.InitGenesis(context.Background(), Genesis(t, addrs...)); err != nil {
		t.Fatalf("cannot apply genesis: %s", err)
	}
	return l
}
