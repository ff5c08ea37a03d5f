package token

import "github.com/iov-one/tokenswap/errors"

// Codespace of the token program errors. Codes follow the numbering clients
// of the token program already know.
const Codespace = "token"

var (
	ErrNotRentExempt             = errors.Register(Codespace, 0, "lamport balance below rent-exempt threshold")
	ErrInsufficientFunds         = errors.Register(Codespace, 1, "insufficient funds")
	ErrInvalidMint               = errors.Register(Codespace, 2, "invalid mint")
	ErrMintMismatch              = errors.Register(Codespace, 3, "account not associated with this mint")
	ErrOwnerMismatch             = errors.Register(Codespace, 4, "owner does not match")
	ErrFixedSupply               = errors.Register(Codespace, 5, "the total supply of this token is fixed")
	ErrAlreadyInUse              = errors.Register(Codespace, 6, "account or token already in use")
	ErrUninitializedState        = errors.Register(Codespace, 9, "state is uninitialized")
	ErrNativeNotSupported        = errors.Register(Codespace, 10, "instruction does not support native tokens")
	ErrNonNativeHasBalance       = errors.Register(Codespace, 11, "non-native account can only be closed if its balance is zero")
	ErrInvalidInstruction        = errors.Register(Codespace, 12, "invalid instruction")
	ErrInvalidState              = errors.Register(Codespace, 13, "invalid account state for operation")
	ErrOverflow                  = errors.Register(Codespace, 14, "operation overflowed")
	ErrAuthorityTypeNotSupported = errors.Register(Codespace, 15, "account does not support specified authority type")
	ErrMintCannotFreeze          = errors.Register(Codespace, 16, "this token mint cannot freeze accounts")
	ErrAccountFrozen             = errors.Register(Codespace, 17, "account is frozen")
)
