package errors

import (
	"fmt"
	"io"
	"reflect"

	"github.com/pkg/errors"
)

const (
	// CodespaceProgram holds the errors any program may return. Their
	// numbering is shared by all programs, so a client can interpret them
	// without knowing which program failed.
	CodespaceProgram = "program"

	// CodespaceRuntime holds the errors raised by the ledger host itself
	// when an instruction breaks the execution rules.
	CodespaceRuntime = "runtime"
)

var (
	// ErrInvalidArgument is returned when an argument, usually an account,
	// is not the one the program expects.
	ErrInvalidArgument = Register(CodespaceProgram, 2, "invalid program argument")

	// ErrInvalidInstructionData is returned when instruction bytes cannot
	// be understood by the program.
	ErrInvalidInstructionData = Register(CodespaceProgram, 3, "invalid instruction data")

	// ErrInvalidAccountData is returned when account data is malformed or
	// an account does not match the one recorded in the state.
	ErrInvalidAccountData = Register(CodespaceProgram, 4, "invalid account data for instruction")

	// ErrAccountDataTooSmall is returned when account data cannot fit the
	// state that must be written into it.
	ErrAccountDataTooSmall = Register(CodespaceProgram, 5, "account data too small for instruction")

	// ErrInsufficientFunds is returned when an account balance is too low
	// to complete the operation.
	ErrInsufficientFunds = Register(CodespaceProgram, 6, "insufficient funds for instruction")

	// ErrIncorrectProgramID is returned when an account is not owned by the
	// expected program, or when a program id is not the expected one.
	ErrIncorrectProgramID = Register(CodespaceProgram, 7, "incorrect program id for instruction")

	// ErrMissingRequiredSignature is returned when an account that must
	// authorize the operation did not sign.
	ErrMissingRequiredSignature = Register(CodespaceProgram, 8, "missing required signature for instruction")

	// ErrAccountAlreadyInitialized is returned when an instruction requires
	// an uninitialized account.
	ErrAccountAlreadyInitialized = Register(CodespaceProgram, 9, "instruction requires an uninitialized account")

	// ErrUninitializedAccount is returned when an instruction requires an
	// initialized account.
	ErrUninitializedAccount = Register(CodespaceProgram, 10, "instruction requires an initialized account")

	// ErrNotEnoughAccountKeys is returned when fewer accounts than required
	// are passed to an instruction.
	ErrNotEnoughAccountKeys = Register(CodespaceProgram, 11, "insufficient account keys for instruction")
)

var (
	// ErrUnbalancedInstruction is returned when the sum of all balances is
	// not the same before and after an instruction.
	ErrUnbalancedInstruction = Register(CodespaceRuntime, 1, "sum of account balances before and after instruction do not match")

	// ErrModifiedProgramID is returned when an account owner was changed by
	// a program that did not own the account.
	ErrModifiedProgramID = Register(CodespaceRuntime, 2, "instruction illegally modified the program id of an account")

	// ErrExternalLamportSpend is returned when a program decreased the
	// balance of an account it does not own.
	ErrExternalLamportSpend = Register(CodespaceRuntime, 3, "instruction spent from the balance of an account it does not own")

	// ErrExternalDataModified is returned when a program modified data of
	// an account it does not own.
	ErrExternalDataModified = Register(CodespaceRuntime, 4, "instruction modified data of an account it does not own")

	// ErrReadonlyLamportChange is returned when the balance of a read-only
	// account has changed.
	ErrReadonlyLamportChange = Register(CodespaceRuntime, 5, "instruction changed the balance of a read-only account")

	// ErrReadonlyDataModified is returned when data of a read-only account
	// has changed.
	ErrReadonlyDataModified = Register(CodespaceRuntime, 6, "instruction modified data of a read-only account")

	// ErrPrivilegeEscalation is returned when a cross-program invocation
	// asks for signer or writable privilege the caller does not have.
	ErrPrivilegeEscalation = Register(CodespaceRuntime, 7, "cross-program invocation with unauthorized signer or writable account")

	// ErrUnsupportedProgram is returned when an instruction targets a
	// program that is not registered with the ledger.
	ErrUnsupportedProgram = Register(CodespaceRuntime, 8, "unsupported program id")

	// ErrCallDepth is returned when nested invocations go too deep.
	ErrCallDepth = Register(CodespaceRuntime, 9, "cross-program invocation call depth too deep")

	// ErrSignatureFailure is returned when a transaction signature does not
	// verify.
	ErrSignatureFailure = Register(CodespaceRuntime, 10, "transaction signature verification failure")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(CodespaceRuntime, 11, "not found")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(CodespaceRuntime, 12, "invalid input")

	// ErrDatabase is returned when the storage layer fails.
	ErrDatabase = Register(CodespaceRuntime, 13, "database error")

	// ErrDuplicate is returned when a unique entry is registered twice.
	ErrDuplicate = Register(CodespaceRuntime, 14, "duplicate")

	// ErrIteratorDone is returned by an iterator that has no more items.
	ErrIteratorDone = Register(CodespaceRuntime, 15, "iterator done")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(CodespaceRuntime, 111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Each program declares its custom errors in its own codespace. This function
// ensures that no (codespace, code) pair is used twice. Attempt to reuse an
// error code results in panic.
//
// Use this function only during a program startup phase.
func Register(codespace string, code uint32, description string) *Error {
	k := codeKey{codespace: codespace, code: code}
	if e, ok := usedCodes[k]; ok {
		panic(fmt.Sprintf("error with code %s/%d is already registered: %q", codespace, code, e.desc))
	}
	err := &Error{
		codespace: codespace,
		code:      code,
		desc:      description,
	}
	usedCodes[k] = err
	return err
}

type codeKey struct {
	codespace string
	code      uint32
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same codespace and code.
var usedCodes = map[codeKey]*Error{}

// Error represents a root error.
//
// Root errors are used to categorize issues. Each instance created during the
// runtime should wrap one of the declared root errors. This allows error
// tests and returning all errors to the client in a safe manner.
type Error struct {
	codespace string
	code      uint32
	desc      string
}

func (e Error) Error() string {
	return e.desc
}

// Codespace returns the namespace the error code belongs to.
func (e Error) Codespace() string {
	return e.codespace
}

// Code returns the numeric code, unique within the codespace.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the stack trace of the innermost wrap when formatted with
// %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	io.WriteString(s, e.Error())
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
