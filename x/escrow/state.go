package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
)

// RecordLen is the size of the escrow record account data.
const RecordLen = 1 + 32 + 32 + 32 + 8

// Record describes a single open escrow. An all zero record is
// uninitialized and can be used by InitEscrow.
type Record struct {
	IsInitialized bool
	// Initializer opened the escrow and receives the rent of closed
	// accounts.
	Initializer solana.PublicKey
	// Custody is the token account holding the deposit.
	Custody solana.PublicKey
	// Receiving is the token account the taker pays into.
	Receiving      solana.PublicKey
	ExpectedAmount uint64
}

// Pack writes the record into dst, which must be exactly RecordLen bytes.
func Pack(r *Record, dst []byte) error {
	if len(dst) != RecordLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "escrow record of %d bytes", len(dst))
	}
	var buf bytes.Buffer
	buf.Grow(RecordLen)
	enc := bin.NewBinEncoder(&buf)
	must(enc.WriteBool(r.IsInitialized))
	must(enc.WriteBytes(r.Initializer[:], false))
	must(enc.WriteBytes(r.Custody[:], false))
	must(enc.WriteBytes(r.Receiving[:], false))
	must(enc.WriteUint64(r.ExpectedAmount, bin.LE))
	copy(dst, buf.Bytes())
	return nil
}

// UnpackUnchecked reads a record that may be uninitialized.
func UnpackUnchecked(src []byte) (*Record, error) {
	if len(src) != RecordLen {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "escrow record of %d bytes", len(src))
	}
	switch src[0] {
	case 0, 1:
	default:
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "initialized flag %d", src[0])
	}

	dec := bin.NewBinDecoder(src)
	var (
		r   Record
		err error
	)
	if r.IsInitialized, err = dec.ReadBool(); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	for _, key := range []*solana.PublicKey{&r.Initializer, &r.Custody, &r.Receiving} {
		raw, err := dec.ReadBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidAccountData, err.Error())
		}
		copy(key[:], raw)
	}
	if r.ExpectedAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return &r, nil
}

// Unpack reads a record that must be initialized.
func Unpack(src []byte) (*Record, error) {
	r, err := UnpackUnchecked(src)
	if err != nil {
		return nil, err
	}
	if !r.IsInitialized {
		return nil, errors.Wrap(errors.ErrUninitializedAccount, "escrow record")
	}
	return r, nil
}
