package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
)

// Instruction tags.
const (
	TagInitializeMint    uint8 = 0
	TagInitializeAccount uint8 = 1
	TagTransfer          uint8 = 3
	TagSetAuthority      uint8 = 6
	TagMintTo            uint8 = 7
	TagCloseAccount      uint8 = 9
	TagFreezeAccount     uint8 = 10
	TagThawAccount       uint8 = 11
)

// AuthorityType selects which authority SetAuthority replaces.
type AuthorityType uint8

const (
	AuthorityMintTokens AuthorityType = iota
	AuthorityFreezeAccount
	AuthorityAccountOwner
	AuthorityCloseAccount
)

// Instruction is implemented by every decoded token program instruction.
type Instruction interface {
	Tag() uint8
	MarshalWithEncoder(*bin.Encoder) error
	UnmarshalWithDecoder(*bin.Decoder) error
}

// InitializeMint accounts: [mint(w), rent sysvar].
type InitializeMint struct {
	Decimals        uint8
	MintAuthority   solana.PublicKey
	FreezeAuthority *solana.PublicKey
}

// InitializeAccount accounts: [account(w), mint, owner, rent sysvar].
type InitializeAccount struct{}

// Transfer accounts: [source(w), destination(w), owner(s)].
type Transfer struct {
	Amount uint64
}

// SetAuthority accounts: [mint or account(w), current authority(s)].
type SetAuthority struct {
	AuthorityType AuthorityType
	NewAuthority  *solana.PublicKey
}

// MintTo accounts: [mint(w), destination(w), mint authority(s)].
type MintTo struct {
	Amount uint64
}

// CloseAccount accounts: [account(w), destination(w), owner(s)].
type CloseAccount struct{}

// FreezeAccount accounts: [account(w), mint, freeze authority(s)].
type FreezeAccount struct{}

// ThawAccount accounts: [account(w), mint, freeze authority(s)].
type ThawAccount struct{}

func (*InitializeMint) Tag() uint8    { return TagInitializeMint }
func (*InitializeAccount) Tag() uint8 { return TagInitializeAccount }
func (*Transfer) Tag() uint8          { return TagTransfer }
func (*SetAuthority) Tag() uint8      { return TagSetAuthority }
func (*MintTo) Tag() uint8            { return TagMintTo }
func (*CloseAccount) Tag() uint8      { return TagCloseAccount }
func (*FreezeAccount) Tag() uint8     { return TagFreezeAccount }
func (*ThawAccount) Tag() uint8       { return TagThawAccount }

func (ix *InitializeMint) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(ix.Decimals); err != nil {
		return err
	}
	if err := enc.WriteBytes(ix.MintAuthority[:], false); err != nil {
		return err
	}
	return writeInstructionKeyOption(enc, ix.FreezeAuthority)
}

func (ix *InitializeMint) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	if ix.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	if ix.MintAuthority, err = readKey(dec); err != nil {
		return err
	}
	ix.FreezeAuthority, err = readInstructionKeyOption(dec)
	return err
}

func (ix *Transfer) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.WriteUint64(ix.Amount, bin.LE)
}

func (ix *Transfer) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	ix.Amount, err = dec.ReadUint64(bin.LE)
	return err
}

func (ix *SetAuthority) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(ix.AuthorityType)); err != nil {
		return err
	}
	return writeInstructionKeyOption(enc, ix.NewAuthority)
}

func (ix *SetAuthority) UnmarshalWithDecoder(dec *bin.Decoder) error {
	t, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if AuthorityType(t) > AuthorityCloseAccount {
		return errors.Wrapf(ErrInvalidInstruction, "authority type %d", t)
	}
	ix.AuthorityType = AuthorityType(t)
	ix.NewAuthority, err = readInstructionKeyOption(dec)
	return err
}

func (ix *MintTo) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.WriteUint64(ix.Amount, bin.LE)
}

func (ix *MintTo) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	ix.Amount, err = dec.ReadUint64(bin.LE)
	return err
}

func (*InitializeAccount) MarshalWithEncoder(*bin.Encoder) error   { return nil }
func (*InitializeAccount) UnmarshalWithDecoder(*bin.Decoder) error { return nil }
func (*CloseAccount) MarshalWithEncoder(*bin.Encoder) error        { return nil }
func (*CloseAccount) UnmarshalWithDecoder(*bin.Decoder) error      { return nil }
func (*FreezeAccount) MarshalWithEncoder(*bin.Encoder) error       { return nil }
func (*FreezeAccount) UnmarshalWithDecoder(*bin.Decoder) error     { return nil }
func (*ThawAccount) MarshalWithEncoder(*bin.Encoder) error         { return nil }
func (*ThawAccount) UnmarshalWithDecoder(*bin.Decoder) error       { return nil }

// Decode reads a tagged token instruction.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidInstruction, "empty")
	}
	var ix Instruction
	switch data[0] {
	case TagInitializeMint:
		ix = &InitializeMint{}
	case TagInitializeAccount:
		ix = &InitializeAccount{}
	case TagTransfer:
		ix = &Transfer{}
	case TagSetAuthority:
		ix = &SetAuthority{}
	case TagMintTo:
		ix = &MintTo{}
	case TagCloseAccount:
		ix = &CloseAccount{}
	case TagFreezeAccount:
		ix = &FreezeAccount{}
	case TagThawAccount:
		ix = &ThawAccount{}
	default:
		return nil, errors.Wrapf(ErrInvalidInstruction, "unknown tag %d", data[0])
	}
	if err := ix.UnmarshalWithDecoder(bin.NewBinDecoder(data[1:])); err != nil {
		if ErrInvalidInstruction.Is(err) {
			return nil, err
		}
		return nil, errors.Wrapf(ErrInvalidInstruction, "tag %d: %s", data[0], err)
	}
	return ix, nil
}

// Encode returns the tagged wire form of ix.
func Encode(ix Instruction) []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint8(ix.Tag()); err != nil {
		panic(err)
	}
	if err := ix.MarshalWithEncoder(enc); err != nil {
		// Writes to a bytes.Buffer do not fail.
		panic(err)
	}
	return buf.Bytes()
}

// Instruction options carry a one byte tag and the value only when present.

func writeInstructionKeyOption(enc *bin.Encoder, key *solana.PublicKey) error {
	if key == nil {
		return enc.WriteUint8(0)
	}
	if err := enc.WriteUint8(1); err != nil {
		return err
	}
	return enc.WriteBytes(key[:], false)
}

func readInstructionKeyOption(dec *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		return &key, nil
	}
	return nil, errors.Wrapf(ErrInvalidInstruction, "option tag %d", tag)
}

func newInstruction(ix Instruction, accounts ...*solana.AccountMeta) solana.Instruction {
	return solana.NewInstruction(solana.TokenProgramID, accounts, Encode(ix))
}

// NewInitializeMintInstruction builds an InitializeMint instruction. The
// freeze authority is optional.
func NewInitializeMintInstruction(mint, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8) solana.Instruction {
	return newInstruction(
		&InitializeMint{Decimals: decimals, MintAuthority: mintAuthority, FreezeAuthority: freezeAuthority},
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	)
}

// NewInitializeAccountInstruction builds an InitializeAccount instruction.
func NewInitializeAccountInstruction(account, mint, owner solana.PublicKey) solana.Instruction {
	return newInstruction(
		&InitializeAccount{},
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(owner, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	)
}

// NewTransferInstruction builds a Transfer instruction signed by owner.
func NewTransferInstruction(source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	return newInstruction(
		&Transfer{Amount: amount},
		solana.NewAccountMeta(source, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(owner, false, true),
	)
}

// NewSetAuthorityInstruction builds a SetAuthority instruction signed by the
// current authority. A nil newAuthority removes the authority.
func NewSetAuthorityInstruction(target, current solana.PublicKey, authorityType AuthorityType, newAuthority *solana.PublicKey) solana.Instruction {
	return newInstruction(
		&SetAuthority{AuthorityType: authorityType, NewAuthority: newAuthority},
		solana.NewAccountMeta(target, true, false),
		solana.NewAccountMeta(current, false, true),
	)
}

// NewMintToInstruction builds a MintTo instruction signed by the mint
// authority.
func NewMintToInstruction(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return newInstruction(
		&MintTo{Amount: amount},
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(authority, false, true),
	)
}

// NewCloseAccountInstruction builds a CloseAccount instruction. The account
// lamports are moved to destination.
func NewCloseAccountInstruction(account, destination, owner solana.PublicKey) solana.Instruction {
	return newInstruction(
		&CloseAccount{},
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(owner, false, true),
	)
}

// NewFreezeAccountInstruction builds a FreezeAccount instruction.
func NewFreezeAccountInstruction(account, mint, authority solana.PublicKey) solana.Instruction {
	return newInstruction(
		&FreezeAccount{},
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(authority, false, true),
	)
}

// NewThawAccountInstruction builds a ThawAccount instruction.
func NewThawAccountInstruction(account, mint, authority solana.PublicKey) solana.Instruction {
	return newInstruction(
		&ThawAccount{},
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(authority, false, true),
	)
}
