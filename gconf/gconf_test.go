package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/swaptest/assert"
)

type limits struct {
	MaxDepth int    `json:"max_depth"`
	Label    string `json:"label"`
}

func (l *limits) Validate() error {
	if l.MaxDepth <= 0 {
		return errors.Wrap(errors.ErrInput, "max depth must be positive")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		conf        *limits
		wantSaveErr *errors.Error
	}{
		"valid configuration": {
			conf: &limits{MaxDepth: 4, Label: "ledger"},
		},
		"invalid configuration cannot be saved": {
			conf:        &limits{MaxDepth: 0},
			wantSaveErr: ErrInvalidConfiguration,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			err := Save(db, "limits", tc.conf)
			if tc.wantSaveErr != nil {
				assert.IsErr(t, tc.wantSaveErr, err)
				ok, err := IsSet(db, "limits")
				assert.Nil(t, err)
				assert.Equal(t, false, ok)
				return
			}
			assert.Nil(t, err)

			var got limits
			assert.Nil(t, Load(db, "limits", &got))
			assert.Equal(t, *tc.conf, got)
		})
	}
}

func TestLoad(t *testing.T) {
	cases := map[string]struct {
		stored  []byte
		wantErr *errors.Error
	}{
		"not set": {
			wantErr: ErrNoConfiguration,
		},
		"malformed": {
			stored:  []byte(`{"max_depth": "four"}`),
			wantErr: ErrInvalidConfiguration,
		},
		"stored value fails validation": {
			stored:  []byte(`{"max_depth": -1}`),
			wantErr: ErrInvalidConfiguration,
		},
		"valid": {
			stored: []byte(`{"max_depth": 2}`),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.stored != nil {
				assert.Nil(t, db.Set(Key("limits"), tc.stored))
			}
			var got limits
			err := Load(db, "limits", &got)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, 2, got.MaxDepth)
		})
	}
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		genesis string
		want    limits
		wantErr *errors.Error
	}{
		"configuration is loaded": {
			genesis: `{"conf": {"limits": {"max_depth": 4, "label": "ledger"}}}`,
			want:    limits{MaxDepth: 4, Label: "ledger"},
		},
		"missing package configuration": {
			genesis: `{"conf": {"other": {"max_depth": 4}}}`,
			wantErr: ErrNoConfiguration,
		},
		"no conf section": {
			genesis: `{}`,
			wantErr: ErrNoConfiguration,
		},
		"malformed configuration": {
			genesis: `{"conf": {"limits": {"max_depth": "four"}}}`,
			wantErr: ErrInvalidConfiguration,
		},
		"invalid configuration": {
			genesis: `{"conf": {"limits": {"max_depth": 0}}}`,
			wantErr: ErrInvalidConfiguration,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts tokenswap.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			var conf limits
			err := InitConfig(db, opts, "limits", &conf)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)

			var got limits
			assert.Nil(t, Load(db, "limits", &got))
			assert.Equal(t, tc.want, got)

			err = InitConfig(db, opts, "limits", &conf)
			assert.IsErr(t, errors.ErrDuplicate, err)
		})
	}
}
