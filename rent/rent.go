package rent

import (
	"bytes"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const (
	// AccountStorageOverhead is the number of bytes every account costs in
	// addition to its data.
	AccountStorageOverhead = 128

	// SysvarSize is the length of the rent sysvar account data.
	SysvarSize = 17

	// DefaultLamportsPerByteYear is the default yearly price of a byte.
	DefaultLamportsPerByteYear = 3480

	// DefaultExemptionThreshold is the default number of years of rent an
	// account must hold to be exempt.
	DefaultExemptionThreshold = 2.0

	// DefaultBurnPercent is the default share of collected rent that is
	// destroyed.
	DefaultBurnPercent = 50
)

// SysvarOwner owns all sysvar accounts.
var SysvarOwner = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")

// Rent holds the parameters that decide whether an account balance is large
// enough to keep the account alive forever.
type Rent struct {
	LamportsPerByteYear uint64  `json:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `json:"exemption_threshold"`
	BurnPercent         uint8   `json:"burn_percent"`
}

// Default returns the default rent parameters.
func Default() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance returns the balance an account holding dataLen bytes needs
// to be rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	size := uint64(AccountStorageOverhead + dataLen)
	return uint64(float64(size*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt returns true if given balance keeps an account of dataLen bytes
// alive forever.
func (r Rent) IsExempt(balance uint64, dataLen int) bool {
	return balance >= r.MinimumBalance(dataLen)
}

// Validate returns an error if the parameters are not usable.
func (r Rent) Validate() error {
	if math.IsNaN(r.ExemptionThreshold) || math.IsInf(r.ExemptionThreshold, 0) || r.ExemptionThreshold < 0 {
		return errors.Wrapf(errors.ErrInput, "exemption threshold %v", r.ExemptionThreshold)
	}
	if r.BurnPercent > 100 {
		return errors.Wrapf(errors.ErrInput, "burn percent %d", r.BurnPercent)
	}
	return nil
}

// Marshal returns the sysvar account data representation.
func (r Rent) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint64(r.LamportsPerByteYear, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteFloat64(r.ExemptionThreshold, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(r.BurnPercent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the parameters from the sysvar account data.
func (r *Rent) Unmarshal(raw []byte) error {
	if len(raw) < SysvarSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "rent sysvar of %d bytes", len(raw))
	}
	dec := bin.NewBinDecoder(raw)
	var (
		res Rent
		err error
	)
	if res.LamportsPerByteYear, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	if res.ExemptionThreshold, err = dec.ReadFloat64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	if res.BurnPercent, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	*r = res
	return nil
}

// FromAccount reads the rent parameters from the sysvar account passed to
// an instruction. Any other account is rejected with ErrInvalidArgument.
func FromAccount(acc *tokenswap.AccountInfo) (Rent, error) {
	if !acc.Key.Equals(solana.SysVarRentPubkey) {
		return Rent{}, errors.Wrapf(errors.ErrInvalidArgument, "%s is not the rent sysvar", acc.Key)
	}
	var r Rent
	if err := r.Unmarshal(acc.Data); err != nil {
		return Rent{}, err
	}
	return r, nil
}

// Account returns the sysvar account holding given parameters, funded so
// that it is rent exempt itself.
func Account(r Rent) (*tokenswap.Account, error) {
	data, err := r.Marshal()
	if err != nil {
		return nil, err
	}
	return &tokenswap.Account{
		Lamports: r.MinimumBalance(SysvarSize),
		Owner:    SysvarOwner,
		Data:     data,
	}, nil
}
