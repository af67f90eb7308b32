package mysqlreconnect

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

var defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(defaultLogger)
}

// SetLogger installs a custom logger. The engine only emits warning-level
// records; any slog backend works.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = defaultLogger
	}
	logger.Store(l)
}

// retryAttrs assembles the shared structured fields for retry warnings.
func retryAttrs(attemptNo int, err error, at *attempt) []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("attempt", attemptNo),
		slog.String("error", err.Error()),
	}
	if at.sql != "" {
		attrs = append(attrs, slog.String("sql", at.sql))
	}
	if at.conn != nil {
		attrs = append(attrs,
			slog.String("host", at.conn.Host),
			slog.String("database", at.conn.Database),
			slog.String("username", at.conn.Username),
		)
	}
	return attrs
}

// logRetryWait emits the per-retry warning, including the computed wait.
func logRetryWait(ctx context.Context, attemptNo int, wait time.Duration, err error, at *attempt) {
	attrs := append([]slog.Attr{
		slog.Float64("wait_seconds", wait.Seconds()),
	}, retryAttrs(attemptNo, err, at)...)
	logger.Load().LogAttrs(ctx, slog.LevelWarn, "transient database error, retrying", attrs...)
}

// logRetryExhausted emits the final warning after a multi-attempt failure.
func logRetryExhausted(ctx context.Context, attempts int, err error, at *attempt) {
	logger.Load().LogAttrs(ctx, slog.LevelWarn, "database retry attempts exhausted",
		retryAttrs(attempts, err, at)...)
}
