package assert

import (
	"testing"

	"github.com/iov-one/tokenswap/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		ErrWant  error
		ErrGot   error
		WantFail bool
	}{
		"same error": {
			ErrWant:  errors.ErrNotFound,
			ErrGot:   errors.ErrNotFound,
			WantFail: false,
		},
		"compared to nil": {
			ErrWant:  nil,
			ErrGot:   errors.ErrNotFound,
			WantFail: true,
		},
		"both nil": {
			ErrWant:  nil,
			ErrGot:   nil,
			WantFail: false,
		},
		"wrapped": {
			ErrWant:  errors.ErrNotFound,
			ErrGot:   errors.Wrap(errors.ErrNotFound, "test"),
			WantFail: false,
		},
		"different": {
			ErrWant:  errors.ErrNotFound,
			ErrGot:   errors.ErrInput,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			IsErr(mock, tc.ErrWant, tc.ErrGot)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestProgramCode(t *testing.T) {
	cases := map[string]struct {
		Want     uint64
		Err      error
		WantFail bool
	}{
		"matching builtin code": {
			Want:     4 << 32,
			Err:      errors.Wrap(errors.ErrInvalidAccountData, "custody"),
			WantFail: false,
		},
		"different builtin code": {
			Want:     3 << 32,
			Err:      errors.ErrInvalidAccountData,
			WantFail: true,
		},
		"runtime error": {
			Want:     0,
			Err:      errors.ErrUnbalancedInstruction,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			ProgramCode(mock, tc.Want, tc.Err)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestRuntimeErr(t *testing.T) {
	cases := map[string]struct {
		Err      error
		WantFail bool
	}{
		"signature failure": {
			Err:      errors.Wrap(errors.ErrSignatureFailure, "taker"),
			WantFail: false,
		},
		"program error": {
			Err:      errors.ErrInvalidAccountData,
			WantFail: true,
		},
		"no error": {
			Err:      nil,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			RuntimeErr(mock, tc.Err)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestNil(t *testing.T) {
	var nilErr *errors.Error
	mock := &tmock{TB: t}
	Nil(mock, nil)
	Nil(mock, nilErr)
	Nil(mock, []byte(nil))
	if mock.failcalls != 0 {
		t.Fatalf("nil values must pass, got %d failures", mock.failcalls)
	}
	Nil(mock, 0)
	if mock.failcalls != 1 {
		t.Fatalf("non nil value must fail, got %d failures", mock.failcalls)
	}
}

// tmock mocks testing.TB and only counts failure calls. It ignores all other
// input.
type tmock struct {
	testing.TB
	failcalls int
}

func (t *tmock) Error(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Errorf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.failcalls++
}

func (t *tmock) Fatal(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Fatalf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.failcalls++
}
