package mysqlreconnect

import "context"

type suppressKey struct{}

// WithoutRetry runs fn with automatic retry disabled for every operation that
// sees the derived context. The flag travels with the context, so it is local
// to the calling chain of work: concurrent goroutines using their own
// contexts are unaffected, and the flag is gone on every exit path, including
// an error escaping from fn.
//
// The intended use is spans where a blind re-execution would be unsafe, such
// as the inside of an open transaction.
func WithoutRetry(ctx context.Context, fn func(context.Context) error) error {
	return fn(context.WithValue(ctx, suppressKey{}, true))
}

// WithoutRetryValue is WithoutRetry for operations that return a value.
func WithoutRetryValue[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return fn(context.WithValue(ctx, suppressKey{}, true))
}

// retryDisabled reports whether ctx is inside a WithoutRetry span.
func retryDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(suppressKey{}).(bool)
	return v
}
