package escrow

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/swaptest/assert"
)

func TestRecordLayout(t *testing.T) {
	r := &Record{
		IsInitialized:  true,
		Initializer:    solana.NewWallet().PublicKey(),
		Custody:        solana.NewWallet().PublicKey(),
		Receiving:      solana.NewWallet().PublicKey(),
		ExpectedAmount: 1_000_000,
	}
	raw := make([]byte, RecordLen)
	assert.Nil(t, Pack(r, raw))

	assert.Equal(t, 105, RecordLen)
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, r.Initializer[:], raw[1:33])
	assert.Equal(t, r.Custody[:], raw[33:65])
	assert.Equal(t, r.Receiving[:], raw[65:97])
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(raw[97:105]))

	got, err := Unpack(raw)
	assert.Nil(t, err)
	assert.Equal(t, r, got)
}

func TestUnpackRecord(t *testing.T) {
	valid := make([]byte, RecordLen)
	assert.Nil(t, Pack(&Record{IsInitialized: true, ExpectedAmount: 1}, valid))
	badFlag := append([]byte(nil), valid...)
	badFlag[0] = 2

	cases := map[string]struct {
		raw          []byte
		wantErr      *errors.Error
		wantUnchkErr *errors.Error
	}{
		"initialized": {
			raw: valid,
		},
		"uninitialized": {
			raw:     make([]byte, RecordLen),
			wantErr: errors.ErrUninitializedAccount,
		},
		"closed": {
			raw:          nil,
			wantErr:      errors.ErrInvalidAccountData,
			wantUnchkErr: errors.ErrInvalidAccountData,
		},
		"too long": {
			raw:          make([]byte, RecordLen+1),
			wantErr:      errors.ErrInvalidAccountData,
			wantUnchkErr: errors.ErrInvalidAccountData,
		},
		"invalid flag": {
			raw:          badFlag,
			wantErr:      errors.ErrInvalidAccountData,
			wantUnchkErr: errors.ErrInvalidAccountData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := Unpack(tc.raw)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
			} else {
				assert.Nil(t, err)
			}

			_, err = UnpackUnchecked(tc.raw)
			if tc.wantUnchkErr != nil {
				assert.IsErr(t, tc.wantUnchkErr, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestPackRequiresExactSize(t *testing.T) {
	err := Pack(&Record{}, make([]byte, RecordLen-1))
	assert.IsErr(t, errors.ErrInvalidAccountData, err)
}
