package runtime

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
	"golang.org/x/crypto/ed25519"
)

// signDomain separates transaction sign bytes from any other signed payload.
const signDomain = "tokenswap/tx/v1"

// Instruction is a single program call inside a transaction.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
}

// Tx is a list of instructions executed atomically. Every account marked as
// signer by any instruction must have provided a signature over SignBytes.
type Tx struct {
	Instructions []Instruction
	Signatures   map[solana.PublicKey]solana.Signature
}

// NewTx builds an unsigned transaction from given instructions.
func NewTx(instructions ...solana.Instruction) (*Tx, error) {
	tx := &Tx{Signatures: make(map[solana.PublicKey]solana.Signature)}
	for i, ix := range instructions {
		data, err := ix.Data()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "instruction %d data: %s", i, err)
		}
		metas := make([]*solana.AccountMeta, 0, len(ix.Accounts()))
		for _, m := range ix.Accounts() {
			metas = append(metas, solana.NewAccountMeta(m.PublicKey, m.IsWritable, m.IsSigner))
		}
		tx.Instructions = append(tx.Instructions, Instruction{
			ProgramID: ix.ProgramID(),
			Accounts:  metas,
			Data:      data,
		})
	}
	return tx, nil
}

// SignBytes returns the canonical message that signers authorize.
func (tx *Tx) SignBytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes([]byte(signDomain), false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(uint16(len(tx.Instructions)), bin.LE); err != nil {
		return nil, err
	}
	for _, ix := range tx.Instructions {
		if err := enc.WriteBytes(ix.ProgramID[:], false); err != nil {
			return nil, err
		}
		if err := enc.WriteUint16(uint16(len(ix.Accounts)), bin.LE); err != nil {
			return nil, err
		}
		for _, m := range ix.Accounts {
			if err := enc.WriteBytes(m.PublicKey[:], false); err != nil {
				return nil, err
			}
			var flags uint8
			if m.IsSigner {
				flags |= 1
			}
			if m.IsWritable {
				flags |= 2
			}
			if err := enc.WriteUint8(flags); err != nil {
				return nil, err
			}
		}
		if err := enc.WriteUint32(uint32(len(ix.Data)), bin.LE); err != nil {
			return nil, err
		}
		if err := enc.WriteBytes(ix.Data, false); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Sign adds a signature of each given key. Signing after the instructions
// were modified invalidates previous signatures.
func (tx *Tx) Sign(keys ...solana.PrivateKey) error {
	msg, err := tx.SignBytes()
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if tx.Signatures == nil {
		tx.Signatures = make(map[solana.PublicKey]solana.Signature)
	}
	for _, key := range keys {
		if len(key) != ed25519.PrivateKeySize {
			return errors.Wrapf(errors.ErrInput, "private key of %d bytes", len(key))
		}
		var sig solana.Signature
		copy(sig[:], ed25519.Sign(ed25519.PrivateKey(key), msg))
		tx.Signatures[key.PublicKey()] = sig
	}
	return nil
}

// RequiredSigners returns every address marked as signer, in order of first
// appearance.
func (tx *Tx) RequiredSigners() []solana.PublicKey {
	seen := make(map[solana.PublicKey]bool)
	var res []solana.PublicKey
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if m.IsSigner && !seen[m.PublicKey] {
				seen[m.PublicKey] = true
				res = append(res, m.PublicKey)
			}
		}
	}
	return res
}

// verify checks all signatures and returns the set of addresses that
// authorized the transaction.
func (tx *Tx) verify() (map[solana.PublicKey]bool, error) {
	if len(tx.Instructions) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "no instructions")
	}
	msg, err := tx.SignBytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	signers := make(map[solana.PublicKey]bool, len(tx.Signatures))
	for key, sig := range tx.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(key[:]), msg, sig[:]) {
			return nil, errors.Wrapf(errors.ErrSignatureFailure, "signature of %s", key)
		}
		signers[key] = true
	}
	for _, key := range tx.RequiredSigners() {
		if !signers[key] {
			return nil, errors.Wrapf(errors.ErrSignatureFailure, "missing signature of %s", key)
		}
	}
	return signers, nil
}
