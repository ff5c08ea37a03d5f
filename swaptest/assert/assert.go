package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/tokenswap/errors"
)

// Nil fails the test if given value is not nil. Typed nil pointers, maps and
// slices are nil as well.
func Nil(t testing.TB, value interface{}) {
	t.Helper()
	if value == nil {
		return
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		if v.IsNil() {
			return
		}
	}
	// %+v prints the stack of errors that carry one.
	t.Fatalf("want a nil value, got %+v", value)
}

// Equal fails the test if two values are not deeply equal.
func Equal(t testing.TB, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// IsErr fails the test unless got is, or wraps, want. A mismatch is reported
// with the codespace and code a transaction result would carry.
func IsErr(t testing.TB, want, got error) {
	t.Helper()

	if want == got {
		return
	}
	if w, ok := want.(interface{ Is(error) bool }); ok && w.Is(got) {
		return
	}
	codespace, code, log := errors.Info(got, true)
	t.Fatalf("want %q, got %s/%d: %s", want, codespace, code, log)
}

// ProgramCode fails the test if given error does not have the wanted numeric
// program error code.
func ProgramCode(t testing.TB, want uint64, err error) {
	t.Helper()

	got, ok := errors.ProgramCode(err)
	if !ok {
		t.Fatalf("not a program error: %+v", err)
		return
	}
	if got != want {
		t.Fatalf("want program error code %#x, got %#x: %+v", want, got, err)
	}
}

// RuntimeErr fails the test unless err was raised by the ledger itself, so
// that no program error code exists for it.
func RuntimeErr(t testing.TB, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("want a runtime error, got nil")
		return
	}
	if code, ok := errors.ProgramCode(err); ok {
		t.Fatalf("want a runtime error, got program error code %#x: %+v", code, err)
	}
}
