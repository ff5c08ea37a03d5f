package runtime

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/gconf"
	"github.com/iov-one/tokenswap/rent"
	"github.com/iov-one/tokenswap/store"
)

// Ledger hosts programs and executes transactions against the account state.
//
// Transactions are executed one at a time. Each transaction runs inside its
// own cache wrap that is written only if every instruction succeeded, so a
// failed transaction leaves no trace other than its result.
type Ledger struct {
	mu sync.Mutex

	committed store.CommitKVStore
	// deliver holds all executed but not yet committed changes.
	deliver  store.KVCacheWrap
	programs map[solana.PublicKey]tokenswap.Program
	debug    bool
}

var _ tokenswap.Registry = (*Ledger)(nil)

// NewLedger loads the latest committed state of db. In debug mode error
// results carry full details.
func NewLedger(db store.CommitKVStore, debug bool) (*Ledger, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &Ledger{
		committed: db,
		deliver:   db.CacheWrap(),
		programs:  make(map[solana.PublicKey]tokenswap.Program),
		debug:     debug,
	}, nil
}

// Register makes a program callable under given id.
func (l *Ledger) Register(id solana.PublicKey, p tokenswap.Program) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.programs[id]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "program %s", id)
	}
	l.programs[id] = p
	return nil
}

// InitGenesis applies genesis options. It can be done only once.
func (l *Ledger) InitGenesis(ctx context.Context, opts tokenswap.Options) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ok, err := gconf.IsSet(l.deliver, configPkg); {
	case err != nil:
		return err
	case ok:
		return errors.Wrap(errors.ErrDuplicate, "genesis already applied")
	}
	cache := l.deliver.CacheWrap()
	if err := (Initializer{}).FromGenesis(opts, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	tokenswap.GetLogger(ctx).Info("genesis applied")
	return nil
}

// Result describes the outcome of a transaction.
type Result struct {
	// Logs are the program log lines in the order they were emitted.
	Logs []string
	// Changed lists the accounts written by the transaction.
	Changed []solana.PublicKey

	Codespace string
	Code      uint32
	Log       string
}

// Execute verifies and runs a transaction. The returned result is never nil
// and describes the failure when an error is returned.
func (l *Ledger) Execute(ctx context.Context, tx *Tx) (res *Result, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	logs := &tokenswap.LogRecorder{}
	ctx = tokenswap.WithLogRecorder(ctx, logs)
	ctx = tokenswap.WithLogInfo(ctx, "call", "execute", "instructions", len(tx.Instructions))

	res = &Result{}
	defer func() {
		res.Logs = logs.Lines()
		res.Codespace, res.Code, res.Log = errors.Info(err, l.debug)
		err = errors.Redact(err, l.debug)
		logDuration(ctx, start, "execute", err)
	}()

	signers, err := tx.verify()
	if err != nil {
		return res, err
	}

	rec := store.NewRecordingStore(l.deliver)
	cache := rec.CacheWrap()
	if err := l.execute(ctx, cache, tx, signers); err != nil {
		cache.Discard()
		return res, err
	}
	if err := cache.Write(); err != nil {
		return res, errors.Wrap(err, "write")
	}
	for _, m := range rec.KVPairs() {
		var addr solana.PublicKey
		copy(addr[:], m.Key[len(accountPrefix):])
		res.Changed = append(res.Changed, addr)
	}
	return res, nil
}

func (l *Ledger) execute(ctx context.Context, db store.KVStore, tx *Tx, signers map[solana.PublicKey]bool) (err error) {
	defer errors.Recover(&err)

	loaded := make(map[solana.PublicKey]*tokenswap.Account)
	before := make(map[solana.PublicKey]snapshot)
	var order []solana.PublicKey
	load := func(addr solana.PublicKey) error {
		if _, ok := loaded[addr]; ok {
			return nil
		}
		acc, err := loadAccount(db, addr)
		if err != nil {
			return err
		}
		if acc == nil {
			acc = l.emptyAccount(addr)
		}
		loaded[addr] = acc
		before[addr] = takeSnapshot(acc)
		order = append(order, addr)
		return nil
	}
	for _, ix := range tx.Instructions {
		if err := load(ix.ProgramID); err != nil {
			return err
		}
		for _, m := range ix.Accounts {
			if err := load(m.PublicKey); err != nil {
				return err
			}
		}
	}

	for i, ix := range tx.Instructions {
		infos := make([]*tokenswap.AccountInfo, 0, len(ix.Accounts))
		for _, m := range ix.Accounts {
			infos = append(infos, &tokenswap.AccountInfo{
				Key:        m.PublicKey,
				IsSigner:   m.IsSigner && signers[m.PublicKey],
				IsWritable: m.IsWritable,
				Account:    loaded[m.PublicKey],
			})
		}
		if err := l.run(ctx, 1, ix.ProgramID, infos, ix.Data); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}

	for _, addr := range order {
		if _, ok := l.programs[addr]; ok {
			continue
		}
		acc := loaded[addr]
		if !changed(before[addr], acc) {
			continue
		}
		if err := saveAccount(db, addr, acc); err != nil {
			return err
		}
	}
	return nil
}

// emptyAccount is the state of an address that holds no lamports. Registered
// programs are represented by an executable account.
func (l *Ledger) emptyAccount(addr solana.PublicKey) *tokenswap.Account {
	if _, ok := l.programs[addr]; ok {
		return &tokenswap.Account{Lamports: 1, Owner: NativeLoaderID, Executable: true}
	}
	return &tokenswap.Account{Owner: solana.SystemProgramID}
}

func changed(pre snapshot, acc *tokenswap.Account) bool {
	return pre.lamports != acc.Lamports ||
		!pre.owner.Equals(acc.Owner) ||
		pre.executable != acc.Executable ||
		!bytes.Equal(pre.data, acc.Data)
}

// Account returns the current state of an address, including changes that
// are not yet committed. ErrNotFound is returned for an address that holds no
// lamports.
func (l *Ledger) Account(addr solana.PublicKey) (*tokenswap.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := loadAccount(l.deliver, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "account %s", addr)
	}
	return acc, nil
}

// Accounts returns all existing accounts in address order.
func (l *Ledger) Accounts() ([]KeyedAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return listAccounts(l.deliver)
}

// Rent returns the rent parameters set at genesis.
func (l *Ledger) Rent() (rent.Rent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	conf, err := loadConfig(l.deliver)
	if err != nil {
		return rent.Rent{}, err
	}
	return conf.Rent, nil
}

// Commit writes all executed transactions to the underlying store and
// persists a new version.
func (l *Ledger) Commit() (store.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.deliver.Write(); err != nil {
		return store.CommitID{}, errors.Wrap(err, "write")
	}
	res, err := l.committed.Commit()
	if err != nil {
		return res, err
	}
	l.deliver = l.committed.CacheWrap()
	return res, nil
}

// CommitInfo returns the latest committed version.
func (l *Ledger) CommitInfo() (store.CommitID, error) {
	return l.committed.LatestVersion()
}
