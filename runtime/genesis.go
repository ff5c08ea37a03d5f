package runtime

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/gconf"
	"github.com/iov-one/tokenswap/rent"
)

// configPkg is the name the ledger configuration is stored under.
const configPkg = "runtime"

// Configuration of the ledger. It is set in genesis under conf.runtime.
type Configuration struct {
	Rent rent.Rent `json:"rent"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	return errors.Wrap(c.Rent.Validate(), "rent")
}

// loadConfig returns the configuration stored at genesis.
func loadConfig(db tokenswap.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, configPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "runtime configuration")
	}
	return &conf, nil
}

// GenesisAccount is an account created at genesis.
type GenesisAccount struct {
	Address  solana.PublicKey `json:"address"`
	Lamports uint64           `json:"lamports"`
	// Owner defaults to the system program.
	Owner *solana.PublicKey `json:"owner,omitempty"`
	Data  []byte            `json:"data,omitempty"`
}

// Initializer sets up the ledger configuration, the rent sysvar and all
// genesis accounts.
type Initializer struct{}

var _ tokenswap.Initializer = Initializer{}

// FromGenesis expects conf.runtime and an optional list of accounts.
func (Initializer) FromGenesis(opts tokenswap.Options, db tokenswap.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, configPkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	sysvar, err := rent.Account(conf.Rent)
	if err != nil {
		return errors.Wrap(err, "rent sysvar")
	}
	if err := saveAccount(db, solana.SysVarRentPubkey, sysvar); err != nil {
		return err
	}

	var accounts []GenesisAccount
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return errors.Wrapf(errors.ErrInput, "accounts: %s", err)
	}
	seen := map[solana.PublicKey]bool{solana.SysVarRentPubkey: true}
	for i, a := range accounts {
		if seen[a.Address] {
			return errors.Wrapf(errors.ErrDuplicate, "account %d: %s", i, a.Address)
		}
		seen[a.Address] = true
		if a.Lamports == 0 {
			return errors.Wrapf(errors.ErrInput, "account %d: no lamports", i)
		}
		acc := &tokenswap.Account{
			Lamports: a.Lamports,
			Owner:    solana.SystemProgramID,
			Data:     a.Data,
		}
		if a.Owner != nil {
			acc.Owner = *a.Owner
		}
		if err := saveAccount(db, a.Address, acc); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
