/*
Package errors implements custom error interfaces for tokenswap.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. Errors that any program may
return live in the "program" codespace and keep the numbering clients already
know. Errors raised by the ledger host live in the "runtime" codespace.

If you want to register a custom error, use Register(codespace, code,
description) from your program package, with the program name as the
codespace. For reusing errors use ErrXxx.New and ErrXxx.Newf, or Wrap.

There is also support for stacktraces. Please ensure you create the custom
error using ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
creation to ensure we attach a stacktrace. If you wrap multiple times, we only
record the first wrap with the stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
for the error
	%s is just the error message
	%+v is the full stack trace
*/
package errors
