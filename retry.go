package mysqlreconnect

import (
	"context"
	"time"
)

// RunOption supplies optional per-invocation context to Run.
type RunOption func(*attempt)

// WithSQL attaches the statement text so the policy can apply the
// read-vs-write rule. Without it every error is treated as statement-free.
func WithSQL(sql string) RunOption {
	return func(at *attempt) { at.sql = sql }
}

// WithConnection attaches connection metadata for allow-list checks and log
// output.
func WithConnection(conn *ConnectionDescriptor) RunOption {
	return func(at *attempt) { at.conn = conn }
}

// WithOnError registers a callback invoked before each backoff sleep, e.g.
// to force the driver to re-establish connections.
func WithOnError(fn func(error)) RunOption {
	return func(at *attempt) { at.onError = fn }
}

// WithMode overrides the configured retry mode for this invocation only.
func WithMode(m RetryMode) RunOption {
	return func(at *attempt) { at.mode = m; at.modeSet = true }
}

// Run executes op, transparently retrying transient database failures
// according to the current configuration. The error returned on giving up is
// op's original error, unchanged, so callers cannot distinguish a
// retried-then-failed operation from a first-try failure.
func Run(ctx context.Context, op func() error, opts ...RunOption) error {
	_, err := RunValue(ctx, func() (struct{}, error) { return struct{}{}, op() }, opts...)
	return err
}

// RunValue is Run for operations that return a value. Attempt numbering
// starts at 1 and each wait is BackoffUnit multiplied by the attempt number.
// A MaxAttempts of 0 never gives up on its own; only a Propagate decision
// ends the loop. The configuration snapshot is re-read on every attempt, so
// operator reconfiguration takes effect mid-loop.
func RunValue[T any](ctx context.Context, op func() (T, error), opts ...RunOption) (T, error) {
	at := &attempt{}
	for _, o := range opts {
		o(at)
	}

	ctx, span := startRunSpan(ctx, at.sql)
	var zero T
	for n := 1; ; n++ {
		v, err := op()
		if err == nil {
			finishRunSpan(span, n, nil)
			return v, nil
		}

		cfg := CurrentConfig()
		if !cfg.Enabled || decide(ctx, &cfg, err, at) == Propagate {
			finishRunSpan(span, n, err)
			return zero, err
		}
		if cfg.MaxAttempts > 0 && n >= cfg.MaxAttempts {
			if n > 1 {
				logRetryExhausted(ctx, n, err, at)
			}
			recordExhausted(ctx)
			finishRunSpan(span, n, err)
			return zero, err
		}

		if at.onError != nil {
			at.onError(err)
		}
		wait := cfg.BackoffUnit * time.Duration(n)
		logRetryWait(ctx, n, wait, err, at)
		recordRetry(ctx, n)
		if clk.Sleep(ctx, wait) != nil {
			// Cancelled mid-backoff; surface the operation's own error so
			// the caller sees the same failure a non-retried call would.
			finishRunSpan(span, n, err)
			return zero, err
		}
	}
}
