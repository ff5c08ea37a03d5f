package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
)

// Instruction tags.
const (
	TagInitEscrow   uint8 = 0
	TagExchange     uint8 = 1
	TagCancelEscrow uint8 = 2
)

// amountLen is the length of an instruction carrying an amount.
const amountLen = 1 + 8

// Instruction is one of InitEscrow, Exchange or CancelEscrow.
type Instruction interface {
	Tag() uint8
}

// InitEscrow opens an escrow expecting Amount tokens in return for the
// custody account balance.
type InitEscrow struct {
	Amount uint64
}

// Exchange completes an escrow. Amount must equal the custody balance the
// taker is about to receive.
type Exchange struct {
	Amount uint64
}

// CancelEscrow returns the deposit to the initializer.
type CancelEscrow struct{}

func (InitEscrow) Tag() uint8   { return TagInitEscrow }
func (Exchange) Tag() uint8     { return TagExchange }
func (CancelEscrow) Tag() uint8 { return TagCancelEscrow }

// Decode reads an escrow instruction. Bytes following the instruction are
// ignored.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidInstruction, "empty")
	}
	switch tag := data[0]; tag {
	case TagInitEscrow, TagExchange:
		if len(data) < amountLen {
			return nil, errors.Wrapf(ErrInvalidInstruction, "tag %d needs %d bytes, got %d", tag, amountLen, len(data))
		}
		amount, err := bin.NewBinDecoder(data[1:amountLen]).ReadUint64(bin.LE)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidInstruction, err.Error())
		}
		if tag == TagInitEscrow {
			return InitEscrow{Amount: amount}, nil
		}
		return Exchange{Amount: amount}, nil
	case TagCancelEscrow:
		return CancelEscrow{}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidInstruction, "unknown tag %d", tag)
	}
}

// Encode returns the wire form of ix.
func Encode(ix Instruction) []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	must(enc.WriteUint8(ix.Tag()))
	switch ix := ix.(type) {
	case InitEscrow:
		must(enc.WriteUint64(ix.Amount, bin.LE))
	case Exchange:
		must(enc.WriteUint64(ix.Amount, bin.LE))
	}
	return buf.Bytes()
}

// must panics on a failed write to an in memory buffer, which can not
// happen.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// InitAccounts lists the accounts of an InitEscrow instruction.
type InitAccounts struct {
	Initializer solana.PublicKey
	// Custody is a token account owned by the initializer holding the
	// deposit.
	Custody solana.PublicKey
	// Receiving is the token account of the initializer that gets paid.
	Receiving solana.PublicKey
	// Record is an allocated, rent exempt account owned by the program.
	Record solana.PublicKey
}

// NewInitEscrowInstruction builds an InitEscrow instruction.
func NewInitEscrowInstruction(programID solana.PublicKey, a InitAccounts, amount uint64) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Initializer, false, true),
		solana.NewAccountMeta(a.Custody, true, false),
		solana.NewAccountMeta(a.Receiving, false, false),
		solana.NewAccountMeta(a.Record, true, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, Encode(InitEscrow{Amount: amount}))
}

// ExchangeAccounts lists the accounts of an Exchange instruction.
type ExchangeAccounts struct {
	Taker solana.PublicKey
	// TakerSending pays the initializer.
	TakerSending solana.PublicKey
	// TakerReceiving gets the custody balance.
	TakerReceiving solana.PublicKey
	Custody        solana.PublicKey
	// Initializer receives the rent of the closed accounts.
	Initializer          solana.PublicKey
	InitializerReceiving solana.PublicKey
	Record               solana.PublicKey
}

// NewExchangeInstruction builds an Exchange instruction.
func NewExchangeInstruction(programID solana.PublicKey, a ExchangeAccounts, amount uint64) (solana.Instruction, error) {
	auth, err := Authority(programID)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Taker, false, true),
		solana.NewAccountMeta(a.TakerSending, true, false),
		solana.NewAccountMeta(a.TakerReceiving, true, false),
		solana.NewAccountMeta(a.Custody, true, false),
		solana.NewAccountMeta(a.Initializer, true, false),
		solana.NewAccountMeta(a.InitializerReceiving, true, false),
		solana.NewAccountMeta(a.Record, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(auth.Address, false, false),
	}, Encode(Exchange{Amount: amount})), nil
}

// CancelAccounts lists the accounts of a CancelEscrow instruction.
type CancelAccounts struct {
	Initializer solana.PublicKey
	// Refund is a token account that gets the deposit back.
	Refund  solana.PublicKey
	Custody solana.PublicKey
	Record  solana.PublicKey
}

// NewCancelEscrowInstruction builds a CancelEscrow instruction.
func NewCancelEscrowInstruction(programID solana.PublicKey, a CancelAccounts) (solana.Instruction, error) {
	auth, err := Authority(programID)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Initializer, true, true),
		solana.NewAccountMeta(a.Refund, true, false),
		solana.NewAccountMeta(a.Custody, true, false),
		solana.NewAccountMeta(a.Record, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(auth.Address, false, false),
	}, Encode(CancelEscrow{})), nil
}
