package runtime

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// accountPrefix is prepended to the address of every stored account.
const accountPrefix = "acct:"

// NativeLoaderID owns the accounts of programs registered with the ledger.
var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

func accountKey(addr solana.PublicKey) []byte {
	return append([]byte(accountPrefix), addr[:]...)
}

// MarshalAccount serializes an account as lamports (u64 LE), owner (32),
// executable (u8), data length (u32 LE) and data.
func MarshalAccount(acc *tokenswap.Account) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(8 + 32 + 1 + 4 + len(acc.Data))
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint64(acc.Lamports, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(acc.Owner[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(acc.Executable); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(uint32(len(acc.Data)), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(acc.Data, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalAccount is the inverse of MarshalAccount.
func UnmarshalAccount(raw []byte) (*tokenswap.Account, error) {
	dec := bin.NewBinDecoder(raw)
	var (
		acc tokenswap.Account
		err error
	)
	if acc.Lamports, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "lamports: %s", err)
	}
	owner, err := dec.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "owner: %s", err)
	}
	copy(acc.Owner[:], owner)
	if acc.Executable, err = dec.ReadBool(); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "executable: %s", err)
	}
	size, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "data length: %s", err)
	}
	if int(size) != len(raw)-45 {
		return nil, errors.Wrapf(errors.ErrDatabase, "data length %d, have %d bytes", size, len(raw)-45)
	}
	if size > 0 {
		data, err := dec.ReadBytes(int(size))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "data: %s", err)
		}
		acc.Data = append([]byte(nil), data...)
	}
	return &acc, nil
}

// loadAccount returns the stored account or nil if the address was never
// funded.
func loadAccount(db tokenswap.ReadOnlyKVStore, addr solana.PublicKey) (*tokenswap.Account, error) {
	raw, err := db.Get(accountKey(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", addr)
	}
	if raw == nil {
		return nil, nil
	}
	acc, err := UnmarshalAccount(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return acc, nil
}

// saveAccount stores the account, removing it once it holds no lamports.
func saveAccount(db tokenswap.SetDeleter, addr solana.PublicKey, acc *tokenswap.Account) error {
	if acc.Lamports == 0 {
		return db.Delete(accountKey(addr))
	}
	raw, err := MarshalAccount(acc)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "marshal %s: %s", addr, err)
	}
	return db.Set(accountKey(addr), raw)
}

// KeyedAccount is an account together with its address.
type KeyedAccount struct {
	Address solana.PublicKey
	*tokenswap.Account
}

// listAccounts returns every stored account in address order.
func listAccounts(db tokenswap.ReadOnlyKVStore) ([]KeyedAccount, error) {
	start := []byte(accountPrefix)
	end := []byte(accountPrefix)
	end[len(end)-1]++
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []KeyedAccount
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		acc, err := UnmarshalAccount(value)
		if err != nil {
			return nil, err
		}
		var addr solana.PublicKey
		copy(addr[:], key[len(accountPrefix):])
		res = append(res, KeyedAccount{Address: addr, Account: acc})
	}
}
