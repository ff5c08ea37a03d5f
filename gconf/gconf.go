package gconf

import (
	"encoding/json"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

var (
	// ErrNoConfiguration is returned when a package configuration was
	// never set.
	ErrNoConfiguration = errors.Register("gconf", 1, "configuration not set")

	// ErrInvalidConfiguration is returned for a configuration that cannot
	// be decoded or does not pass its own validation.
	ErrInvalidConfiguration = errors.Register("gconf", 2, "invalid configuration")
)

// Configuration is a package configuration. It is stored as JSON and must be
// valid whenever it is written or read.
type Configuration interface {
	Validate() error
}

// Key returns the database key of the configuration of given package. All
// keys share a prefix that no account key can have.
func Key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save writes a valid configuration.
func Save(db tokenswap.SetDeleter, pkg string, conf Configuration) error {
	if err := conf.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfiguration, "%s: %s", pkg, err)
	}
	raw, err := json.Marshal(conf)
	if err != nil {
		return errors.Wrapf(ErrInvalidConfiguration, "%s: %s", pkg, err)
	}
	return db.Set(Key(pkg), raw)
}

// Load reads the configuration of given package into dst. A stored value that
// no longer validates is reported like a malformed one.
func Load(db tokenswap.ReadOnlyKVStore, pkg string, dst Configuration) error {
	raw, err := db.Get(Key(pkg))
	if err != nil {
		return errors.Wrapf(err, "configuration %s", pkg)
	}
	if raw == nil {
		return errors.Wrap(ErrNoConfiguration, pkg)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(ErrInvalidConfiguration, "%s: %s", pkg, err)
	}
	if err := dst.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfiguration, "stored %s: %s", pkg, err)
	}
	return nil
}

// IsSet returns true if the configuration of given package was saved.
func IsSet(db tokenswap.ReadOnlyKVStore, pkg string) (bool, error) {
	return db.Has(Key(pkg))
}

// InitConfig reads conf.<pkg> from genesis into conf and saves it. Setting a
// configuration twice is not allowed.
func InitConfig(db tokenswap.KVStore, opts tokenswap.Options, pkg string, conf Configuration) error {
	switch ok, err := IsSet(db, pkg); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrDuplicate, "configuration %s", pkg)
	}

	var all tokenswap.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return errors.Wrapf(ErrInvalidConfiguration, "conf: %s", err)
	}
	if all[pkg] == nil {
		return errors.Wrapf(ErrNoConfiguration, "genesis has no conf.%s", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(ErrInvalidConfiguration, "conf.%s: %s", pkg, err)
	}
	return Save(db, pkg, conf)
}
