package escrow

import "github.com/iov-one/tokenswap/errors"

// Codespace of the escrow program errors.
const Codespace = "escrow"

var (
	ErrInvalidInstruction     = errors.Register(Codespace, 0, "invalid instruction")
	ErrNotRentExempt          = errors.Register(Codespace, 1, "not rent exempt")
	ErrExpectedAmountMismatch = errors.Register(Codespace, 2, "expected amount mismatch")
	ErrAmountOverflow         = errors.Register(Codespace, 3, "amount overflow")
	ErrInvalidAmount          = errors.Register(Codespace, 4, "invalid amount")
)
