package system

import "github.com/iov-one/tokenswap/errors"

// Codespace of the system program errors.
const Codespace = "system"

var (
	ErrAccountAlreadyInUse        = errors.Register(Codespace, 0, "an account with the same address already exists")
	ErrResultWithNegativeLamports = errors.Register(Codespace, 1, "account does not have enough lamports to perform the operation")
)
