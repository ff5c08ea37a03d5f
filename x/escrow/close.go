package escrow

import (
	"math/bits"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// closeAccount moves all lamports of slot to main and clears the slot data.
// The host removes an account without lamports once the transaction
// succeeds.
func closeAccount(main, slot *tokenswap.AccountInfo) error {
	sum, carry := bits.Add64(main.Lamports, slot.Lamports, 0)
	if carry != 0 {
		return errors.Wrapf(ErrAmountOverflow, "%d + %d lamports", main.Lamports, slot.Lamports)
	}
	main.Lamports = sum
	slot.Lamports = 0
	slot.Data = nil
	return nil
}
