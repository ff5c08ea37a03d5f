package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/client"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/rent"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/store/iavl"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

const (
	// faucetLamports is the genesis balance of the faucet.
	faucetLamports = 1_000_000_000_000_000
	// actorLamports is what the faucet gives to every simulated party.
	actorLamports = 1_000_000_000
)

func cmdSimulate(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Run a full escrow on a local ledger and print the resulting token balances.

Two tokens A and B are created. The initializer deposits A tokens and asks for
B tokens in return. The taker then either completes the exchange or, with
-cancel, the initializer takes the deposit back.

By default the ledger lives in memory. With -home the state is kept in an iavl
store in given directory and committed after the simulation, so consecutive
runs build on top of each other.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl     = fl.String("home", env("ESCROWCLI_HOME", ""), "Directory of the ledger state. Empty keeps the state in memory. You can use ESCROWCLI_HOME environment variable to set it.")
		seedFl     = fl.String("seed", "escrowcli", "Seed of the faucet key funded at genesis.")
		depositFl  = fl.Uint64("deposit", 1_000_000, "Amount of A tokens the initializer deposits.")
		expectedFl = fl.Uint64("expected", 1_000_000, "Amount of B tokens the initializer expects.")
		amountFl   = fl.Uint64("amount", 0, "Deposit amount the taker expects to receive. Zero means the real deposit.")
		cancelFl   = fl.Bool("cancel", false, "Cancel the escrow instead of taking it.")
		verboseFl  = fl.Bool("v", false, "Print program logs and the ledger log.")
	)
	fl.Parse(args)

	ctx := context.Background()
	if *verboseFl {
		ctx = tokenswap.WithLogger(ctx, log.NewTMLogger(log.NewSyncWriter(output)))
	}

	db := iavl.MemCommitStore()
	if *homeFl != "" {
		var err error
		db, err = iavl.NewCommitStore(filepath.Join(*homeFl, "data"), "ledger")
		if err != nil {
			return fmt.Errorf("cannot open ledger store: %s", err)
		}
	}
	defer db.Close()

	l, err := runtime.NewLedger(db, false)
	if err != nil {
		return fmt.Errorf("cannot load ledger: %s", err)
	}
	if err := client.RegisterPrograms(l, escrow.DefaultProgramID); err != nil {
		return fmt.Errorf("cannot register programs: %s", err)
	}
	faucet := seededKey(*seedFl)
	if err := initGenesis(ctx, l, faucet.PublicKey()); err != nil {
		return err
	}

	sim := &simulation{
		Client: client.NewClient(l, escrow.DefaultProgramID),
		out:    output,
		logs:   *verboseFl,
	}
	if err := sim.setup(ctx, faucet, *depositFl, *expectedFl); err != nil {
		return err
	}
	if err := sim.run(ctx, *depositFl, *expectedFl, *amountFl, *cancelFl); err != nil {
		return err
	}

	if *homeFl != "" {
		id, err := l.Commit()
		if err != nil {
			return fmt.Errorf("cannot commit: %s", err)
		}
		fmt.Fprintf(output, "committed version %d\n", id.Version)
	}
	return nil
}

// seededKey returns a key deterministically derived from given seed.
func seededKey(seed string) solana.PrivateKey {
	s := sha256.Sum256([]byte(seed))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(s[:]))
}

// initGenesis funds the faucet with default rent parameters. A ledger
// loaded from an existing home directory already went through genesis.
func initGenesis(ctx context.Context, l *runtime.Ledger, faucet solana.PublicKey) error {
	conf, err := json.Marshal(map[string]interface{}{
		"runtime": runtime.Configuration{Rent: rent.Default()},
	})
	if err != nil {
		return fmt.Errorf("cannot marshal configuration: %s", err)
	}
	accounts, err := json.Marshal([]runtime.GenesisAccount{
		{Address: faucet, Lamports: faucetLamports},
	})
	if err != nil {
		return fmt.Errorf("cannot marshal accounts: %s", err)
	}
	err = l.InitGenesis(ctx, tokenswap.Options{"conf": conf, "accounts": accounts})
	if err != nil && !errors.ErrDuplicate.Is(err) {
		return fmt.Errorf("cannot apply genesis: %s", err)
	}
	return nil
}

// simulation holds the parties of a single escrow.
type simulation struct {
	*client.Client
	out  io.Writer
	logs bool

	initializer, taker         solana.PrivateKey
	initializerA, initializerB solana.PublicKey
	takerA, takerB             solana.PublicKey
}

// setup funds both parties from the faucet and gives the initializer deposit
// A tokens and the taker expected B tokens.
func (s *simulation) setup(ctx context.Context, faucet solana.PrivateKey, deposit, expected uint64) error {
	authority := solana.NewWallet().PrivateKey
	s.initializer = solana.NewWallet().PrivateKey
	s.taker = solana.NewWallet().PrivateKey

	var funding []solana.Instruction
	for _, k := range []solana.PrivateKey{authority, s.initializer, s.taker} {
		funding = append(funding, system.NewTransferInstruction(actorLamports, faucet.PublicKey(), k.PublicKey()).Build())
	}
	if _, err := s.SubmitTx(ctx, []solana.PrivateKey{faucet}, funding...); err != nil {
		return fmt.Errorf("cannot fund parties: %s", err)
	}

	mintA, err := s.CreateMint(ctx, authority, authority, 0)
	if err != nil {
		return fmt.Errorf("cannot create mint A: %s", err)
	}
	mintB, err := s.CreateMint(ctx, authority, authority, 0)
	if err != nil {
		return fmt.Errorf("cannot create mint B: %s", err)
	}
	accounts := []struct {
		dst   *solana.PublicKey
		mint  solana.PublicKey
		owner solana.PrivateKey
	}{
		{&s.initializerA, mintA, s.initializer},
		{&s.initializerB, mintB, s.initializer},
		{&s.takerA, mintA, s.taker},
		{&s.takerB, mintB, s.taker},
	}
	for _, a := range accounts {
		if *a.dst, err = s.CreateTokenAccount(ctx, a.owner, a.mint, a.owner.PublicKey()); err != nil {
			return fmt.Errorf("cannot create token account: %s", err)
		}
	}
	if err := s.MintTo(ctx, authority, mintA, s.initializerA, deposit); err != nil {
		return fmt.Errorf("cannot mint A: %s", err)
	}
	if err := s.MintTo(ctx, authority, mintB, s.takerB, expected); err != nil {
		return fmt.Errorf("cannot mint B: %s", err)
	}
	return nil
}

// run opens the escrow and then takes or cancels it. A rejected take or
// cancel is part of the simulation result and not an error.
func (s *simulation) run(ctx context.Context, deposit, expected, amount uint64, cancel bool) error {
	opened, err := s.OpenEscrow(ctx, client.Offer{
		Initializer: s.initializer,
		Source:      s.initializerA,
		Deposit:     deposit,
		Receiving:   s.initializerB,
		Expected:    expected,
	})
	if err != nil {
		return fmt.Errorf("cannot open escrow: %s", err)
	}
	s.printLogs(opened.Result)
	fmt.Fprintf(s.out, "opened escrow of %d A for %d B\n", deposit, expected)

	var (
		name string
		res  *runtime.Result
	)
	if cancel {
		name = "cancel"
		res, err = s.Cancel(ctx, s.initializer, opened.Record, s.initializerA)
	} else {
		name = "exchange"
		if amount == 0 {
			amount = deposit
		}
		res, err = s.Take(ctx, s.taker, opened.Record, s.takerB, s.takerA, amount)
	}
	if res == nil {
		return fmt.Errorf("cannot %s: %s", name, err)
	}
	s.printLogs(res)
	if err != nil {
		fmt.Fprintf(s.out, "%s rejected %s/%d: %s\n", name, res.Codespace, res.Code, res.Log)
	} else {
		fmt.Fprintf(s.out, "%s completed\n", name)
	}

	for _, p := range []struct {
		name string
		a, b solana.PublicKey
	}{
		{"initializer", s.initializerA, s.initializerB},
		{"taker", s.takerA, s.takerB},
	} {
		a, err := s.balance(p.a)
		if err != nil {
			return err
		}
		b, err := s.balance(p.b)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%-12s A %-10d B %d\n", p.name, a, b)
	}
	return nil
}

func (s *simulation) balance(addr solana.PublicKey) (uint64, error) {
	acc, err := s.TokenAccount(addr)
	if err != nil {
		return 0, fmt.Errorf("cannot read token account %s: %s", addr, err)
	}
	return acc.Amount, nil
}

func (s *simulation) printLogs(res *runtime.Result) {
	if !s.logs {
		return
	}
	for _, line := range res.Logs {
		fmt.Fprintln(s.out, line)
	}
}
