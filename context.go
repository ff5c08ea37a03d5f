/*
Package tokenswap defines all common interfaces to tie together the ledger
host, the programs it runs and the stores that keep account state.

We pass context through context.Context between the ledger host and the
programs. To do so, tokenswap defines some common keys to store info, such as
the logger and the program log recorder.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package tokenswap

import (
	"context"
	"fmt"
	"sync"

	"github.com/tendermint/tendermint/libs/log"
)

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyLogRecorder
)

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// LogRecorder collects program log lines emitted during a transaction.
type LogRecorder struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns all recorded lines in the order they were emitted.
func (r *LogRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *LogRecorder) record(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

// WithLogRecorder sets the recorder that collects program logs.
func WithLogRecorder(ctx context.Context, r *LogRecorder) context.Context {
	return context.WithValue(ctx, contextKeyLogRecorder, r)
}

// GetLogRecorder returns the recorder set for this context.
func GetLogRecorder(ctx context.Context) (*LogRecorder, bool) {
	r, ok := ctx.Value(contextKeyLogRecorder).(*LogRecorder)
	return r, ok
}

// Logf emits a program log line. The line is returned to the client as part
// of the transaction result and written to the debug log.
func Logf(ctx context.Context, format string, args ...interface{}) {
	line := "Program log: " + fmt.Sprintf(format, args...)
	if r, ok := GetLogRecorder(ctx); ok {
		r.record(line)
	}
	GetLogger(ctx).Debug(line)
}
