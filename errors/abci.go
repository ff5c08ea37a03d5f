package errors

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// SuccessCode declares a result code 0 to signal that the processing
	// was successful and no error is returned.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed under
	// an internal error code and a generic message instead of detailed
	// error string.
	internalCodespace        = "internal"
	internalCode      uint32 = 1
	internalLog              = "internal error"
)

// Info returns the error information as consumed by a client. Returned
// codespace, code and log message should be used as a transaction result.
// Any error that does not wrap a registered root error is categorized as an
// internal error with code 1.
// When not running in a debug mode all messages of internal errors are
// replaced with generic "internal error".
func Info(err error, debug bool) (string, uint32, string) {
	if errIsNil(err) {
		return "", SuccessCode, ""
	}

	// Only non-internal errors information can be exposed. Any error that
	// does not explicitly expose its state by wrapping a registered error
	// must be silenced.
	if root := rootError(err); root != nil {
		if debug {
			// Try to trigger full information formatting. This
			// might produce a stacktrace.
			return root.codespace, root.code, fmt.Sprintf("%+v", err)
		}
		return root.codespace, root.code, err.Error()
	}

	if debug {
		return internalCodespace, internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCodespace, internalCode, internalLog
}

// ProgramCode returns the 64 bit numeric form a program error has on the
// wire. Errors of the shared program codespace are shifted into the upper 32
// bits. Program specific (custom) errors keep their code in the lower bits,
// except for custom code 0 which would collide with success and is encoded as
// 1<<32.
//
// False is returned for errors that a program cannot return, such as host
// runtime errors, panics and errors that do not wrap a registered root error.
func ProgramCode(err error) (uint64, bool) {
	if errIsNil(err) {
		return SuccessCode, true
	}
	root := rootError(err)
	if root == nil {
		return 0, false
	}
	switch root.codespace {
	case CodespaceRuntime:
		return 0, false
	case CodespaceProgram:
		return uint64(root.code) << 32, true
	}
	if root.code == 0 {
		return 1 << 32, true
	}
	return uint64(root.code), true
}

// rootError unwraps given error and returns the registered root error it
// wraps or nil.
func rootError(err error) *Error {
	for {
		switch e := err.(type) {
		case *Error:
			return e
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// errIsNil returns true if value represented by the given error is nil.
//
// Most of the time a simple == check is enough. There is a very narrowed
// spectrum of cases (mostly in tests) where a more sophisticated check is
// required.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}

// Redact replace all errors that do not wrap a registered error with a
// generic internal error instance. This function is supposed to hide
// implementation details errors and leave only those that are declared.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) {
		return errors.New(internalLog)
	}
	if rootError(err) == nil {
		return errors.New(internalLog)
	}
	return err
}
