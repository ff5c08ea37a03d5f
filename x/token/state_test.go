package token

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/swaptest/assert"
)

func TestAccountLayout(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	closer := solana.NewWallet().PublicKey()

	acc := &Account{
		Mint:           mint,
		Owner:          owner,
		Amount:         1_000_000,
		State:          StateFrozen,
		CloseAuthority: &closer,
	}
	raw := make([]byte, AccountLen)
	assert.Nil(t, PackAccount(acc, raw))

	assert.Equal(t, mint[:], raw[0:32])
	assert.Equal(t, owner[:], raw[32:64])
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(raw[64:72]))
	// No delegate.
	assert.Equal(t, make([]byte, 36), raw[72:108])
	assert.Equal(t, byte(StateFrozen), raw[108])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[129:133]))
	assert.Equal(t, closer[:], raw[133:165])

	got, err := UnpackAccount(raw)
	assert.Nil(t, err)
	assert.Equal(t, acc, got)
}

func TestMintLayout(t *testing.T) {
	authority := solana.NewWallet().PublicKey()

	m := &Mint{MintAuthority: &authority, Supply: 42, Decimals: 6, IsInitialized: true}
	raw := make([]byte, MintLen)
	assert.Nil(t, PackMint(m, raw))

	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[0:4]))
	assert.Equal(t, authority[:], raw[4:36])
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(raw[36:44]))
	assert.Equal(t, byte(6), raw[44])
	assert.Equal(t, byte(1), raw[45])
	assert.Equal(t, make([]byte, 36), raw[46:82])

	got, err := UnpackMint(raw)
	assert.Nil(t, err)
	assert.Equal(t, m, got)
}

func TestUnpackErrors(t *testing.T) {
	badState := make([]byte, AccountLen)
	badState[108] = 3
	badOption := make([]byte, AccountLen)
	badOption[72] = 2
	badBool := make([]byte, MintLen)
	badBool[45] = 7

	cases := map[string]struct {
		unpack  func() error
		wantErr *errors.Error
	}{
		"account too short": {
			unpack:  func() error { _, err := UnpackAccount(make([]byte, AccountLen-1)); return err },
			wantErr: errors.ErrInvalidAccountData,
		},
		"uninitialized account": {
			unpack:  func() error { _, err := UnpackAccount(make([]byte, AccountLen)); return err },
			wantErr: errors.ErrUninitializedAccount,
		},
		"uninitialized account unchecked": {
			unpack: func() error { _, err := UnpackAccountUnchecked(make([]byte, AccountLen)); return err },
		},
		"unknown state": {
			unpack:  func() error { _, err := UnpackAccountUnchecked(badState); return err },
			wantErr: errors.ErrInvalidAccountData,
		},
		"unknown option tag": {
			unpack:  func() error { _, err := UnpackAccountUnchecked(badOption); return err },
			wantErr: errors.ErrInvalidAccountData,
		},
		"uninitialized mint": {
			unpack:  func() error { _, err := UnpackMint(make([]byte, MintLen)); return err },
			wantErr: errors.ErrUninitializedAccount,
		},
		"invalid bool": {
			unpack:  func() error { _, err := UnpackMintUnchecked(badBool); return err },
			wantErr: errors.ErrInvalidAccountData,
		},
		"mint too long": {
			unpack:  func() error { _, err := UnpackMintUnchecked(make([]byte, MintLen+1)); return err },
			wantErr: errors.ErrInvalidAccountData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.unpack()
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
