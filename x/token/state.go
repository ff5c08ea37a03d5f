package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
)

const (
	// MintLen is the packed size of a Mint.
	MintLen = 82
	// AccountLen is the packed size of a token Account.
	AccountLen = 165
)

// NativeMint is the mint of wrapped native lamports. Accounts of this mint
// are not supported.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// AccountState of a token account.
type AccountState uint8

const (
	StateUninitialized AccountState = iota
	StateInitialized
	StateFrozen
)

// Mint describes a token type.
type Mint struct {
	// MintAuthority may mint new tokens. When nil the supply is fixed.
	MintAuthority *solana.PublicKey
	Supply        uint64
	Decimals      uint8
	IsInitialized bool
	// FreezeAuthority may freeze token accounts of this mint. When nil the
	// mint cannot freeze.
	FreezeAuthority *solana.PublicKey
}

// Account holds a balance of a single mint.
type Account struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

func (a *Account) IsFrozen() bool {
	return a.State == StateFrozen
}

func (a *Account) IsNativeAccount() bool {
	return a.IsNative != nil
}

func (m *Mint) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeKeyOption(enc, m.MintAuthority); err != nil {
		return err
	}
	if err := enc.WriteUint64(m.Supply, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return err
	}
	if err := enc.WriteBool(m.IsInitialized); err != nil {
		return err
	}
	return writeKeyOption(enc, m.FreezeAuthority)
}

func (m *Mint) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	if m.MintAuthority, err = readKeyOption(dec); err != nil {
		return err
	}
	if m.Supply, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if m.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	if m.IsInitialized, err = readBool(dec); err != nil {
		return err
	}
	m.FreezeAuthority, err = readKeyOption(dec)
	return err
}

func (a *Account) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.Mint[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Amount, bin.LE); err != nil {
		return err
	}
	if err := writeKeyOption(enc, a.Delegate); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(a.State)); err != nil {
		return err
	}
	if err := writeU64Option(enc, a.IsNative); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.DelegatedAmount, bin.LE); err != nil {
		return err
	}
	return writeKeyOption(enc, a.CloseAuthority)
}

func (a *Account) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	if a.Mint, err = readKey(dec); err != nil {
		return err
	}
	if a.Owner, err = readKey(dec); err != nil {
		return err
	}
	if a.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if a.Delegate, err = readKeyOption(dec); err != nil {
		return err
	}
	state, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if AccountState(state) > StateFrozen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "account state %d", state)
	}
	a.State = AccountState(state)
	if a.IsNative, err = readU64Option(dec); err != nil {
		return err
	}
	if a.DelegatedAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	a.CloseAuthority, err = readKeyOption(dec)
	return err
}

// PackMint writes m into dst, which must be exactly MintLen long.
func PackMint(m *Mint, dst []byte) error {
	return pack(m, dst, MintLen)
}

// UnpackMintUnchecked decodes a mint that may be uninitialized.
func UnpackMintUnchecked(src []byte) (*Mint, error) {
	if len(src) != MintLen {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "mint of %d bytes", len(src))
	}
	var m Mint
	if err := m.UnmarshalWithDecoder(bin.NewBinDecoder(src)); err != nil {
		return nil, invalidData(err)
	}
	return &m, nil
}

// UnpackMint decodes an initialized mint.
func UnpackMint(src []byte) (*Mint, error) {
	m, err := UnpackMintUnchecked(src)
	if err != nil {
		return nil, err
	}
	if !m.IsInitialized {
		return nil, errors.Wrap(errors.ErrUninitializedAccount, "mint")
	}
	return m, nil
}

// PackAccount writes a into dst, which must be exactly AccountLen long.
func PackAccount(a *Account, dst []byte) error {
	return pack(a, dst, AccountLen)
}

// UnpackAccountUnchecked decodes a token account that may be uninitialized.
func UnpackAccountUnchecked(src []byte) (*Account, error) {
	if len(src) != AccountLen {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "token account of %d bytes", len(src))
	}
	var a Account
	if err := a.UnmarshalWithDecoder(bin.NewBinDecoder(src)); err != nil {
		return nil, invalidData(err)
	}
	return &a, nil
}

// UnpackAccount decodes an initialized token account.
func UnpackAccount(src []byte) (*Account, error) {
	a, err := UnpackAccountUnchecked(src)
	if err != nil {
		return nil, err
	}
	if a.State == StateUninitialized {
		return nil, errors.Wrap(errors.ErrUninitializedAccount, "token account")
	}
	return a, nil
}

// invalidData makes sure a decoding failure is reported as invalid account
// data.
func invalidData(err error) error {
	if errors.ErrInvalidAccountData.Is(err) {
		return err
	}
	return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
}

type marshaler interface {
	MarshalWithEncoder(*bin.Encoder) error
}

func pack(m marshaler, dst []byte, size int) error {
	if len(dst) != size {
		return errors.Wrapf(errors.ErrInvalidAccountData, "want %d bytes, got %d", size, len(dst))
	}
	var buf bytes.Buffer
	buf.Grow(size)
	if err := m.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	copy(dst, buf.Bytes())
	return nil
}

// Optional values are prefixed with a u32 tag and always take the full width.

func writeKeyOption(enc *bin.Encoder, key *solana.PublicKey) error {
	if key == nil {
		if err := enc.WriteUint32(0, bin.LE); err != nil {
			return err
		}
		return enc.WriteBytes(make([]byte, solana.PublicKeyLength), false)
	}
	if err := enc.WriteUint32(1, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(key[:], false)
}

func readKeyOption(dec *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	key, err := readKey(dec)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &key, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidAccountData, "option tag %d", tag)
}

func writeU64Option(enc *bin.Encoder, v *uint64) error {
	var tag uint32
	var val uint64
	if v != nil {
		tag, val = 1, *v
	}
	if err := enc.WriteUint32(tag, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint64(val, bin.LE)
}

func readU64Option(dec *bin.Decoder) (*uint64, error) {
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	val, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &val, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidAccountData, "option tag %d", tag)
}

func readKey(dec *bin.Decoder) (solana.PublicKey, error) {
	var key solana.PublicKey
	raw, err := dec.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return key, err
	}
	copy(key[:], raw)
	return key, nil
}

func readBool(dec *bin.Decoder) (bool, error) {
	b, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.Wrapf(errors.ErrInvalidAccountData, "bool byte %d", b)
}
