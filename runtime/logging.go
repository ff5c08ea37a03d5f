package runtime

import (
	"context"
	"time"

	"github.com/iov-one/tokenswap"
)

// logDuration writes information about the time and result to the logger.
// Failures are logged as errors, successes as info.
func logDuration(ctx context.Context, start time.Time, msg string, err error) {
	delta := time.Since(start)
	logger := tokenswap.GetLogger(ctx).With("duration", delta/time.Microsecond)

	if err != nil {
		logger.Error(msg, "err", err)
		return
	}
	logger.Info(msg)
}
