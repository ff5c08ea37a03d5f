package tokenswap

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
)

// Account is the state the ledger keeps for a single address.
type Account struct {
	// Lamports is the native balance held by the account.
	Lamports uint64
	// Owner is the program that is allowed to modify Data and debit
	// Lamports.
	Owner solana.PublicKey
	// Executable is set for accounts holding a program.
	Executable bool
	// Data is the program defined state.
	Data []byte
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return &c
}

// AccountInfo is the view a program has of an account passed to an
// instruction. The Account it points to is shared with the caller, so
// changes made by a nested invocation are visible once it returns.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	*Account
}

// Meta returns an account meta describing this account with the same
// privileges.
func (a *AccountInfo) Meta() *solana.AccountMeta {
	return solana.NewAccountMeta(a.Key, a.IsWritable, a.IsSigner)
}

// Accounts walks the ordered account list of an instruction.
type Accounts struct {
	list []*AccountInfo
	pos  int
}

// NewAccounts returns an iterator over given accounts.
func NewAccounts(list []*AccountInfo) *Accounts {
	return &Accounts{list: list}
}

// Next returns the next account in order or ErrNotEnoughAccountKeys if all
// accounts were already consumed.
func (a *Accounts) Next() (*AccountInfo, error) {
	if a.pos >= len(a.list) {
		return nil, errors.Wrapf(errors.ErrNotEnoughAccountKeys, "want account %d, have %d", a.pos+1, len(a.list))
	}
	acc := a.list[a.pos]
	a.pos++
	return acc, nil
}
