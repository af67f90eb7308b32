// Package mysqlreconnect transparently retries MySQL operations that fail
// with transient connection errors (server restarts, network blips, dropped
// connections) while refusing to replay operations whose side effects cannot
// be safely repeated.
//
// # Overview
//
// The engine wraps statement execution behind Run/RunValue. When a wrapped
// operation fails, the error is classified against a set of known transient
// message fingerprints and the statement text is classified as a read or a
// write. A configurable retry mode then decides whether re-execution is safe:
//
//   - ModeReadOnly retries reads only (the default).
//   - ModeReadWrite also retries writes, but only for errors known to occur
//     before the statement reached the server.
//   - ModeForce retries everything; intended for idempotent workloads.
//
// Retries wait with linear backoff (BackoffUnit × attempt number) and give up
// after MaxAttempts invocations (0 means never). The original error is always
// re-raised unchanged, so successful retries are invisible to callers aside
// from warning-level log entries.
//
// # Quick Start
//
//	mysqlreconnect.SetEnabled(true)
//	_ = mysqlreconnect.SetMode(mysqlreconnect.ModeReadWrite)
//
//	pool, err := mysqlreconnect.NewPool(ctx, "mysql", "user:pass@tcp(db:3306)/app")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	rows, err := pool.Query(ctx, "SELECT id FROM users WHERE active = 1")
//
// # Suppressing retries
//
// WithoutRetry disables the engine for a span of work carried by the derived
// context, e.g. inside a transaction where blind replay is unsafe:
//
//	err := mysqlreconnect.WithoutRetry(ctx, func(ctx context.Context) error {
//		return doDelicateWork(ctx)
//	})
//
// Pool.WithinTx applies this automatically.
//
// # Restricting retries to specific databases
//
// An optional allow-list limits retries to host/database pairs, using SQL
// LIKE globs ('%', '_', '\' escape):
//
//	_ = mysqlreconnect.SetRetryDatabases("replica%:app_db", "staging")
//
// A bare name is shorthand for that exact database on any host. Patterns are
// anchored: "prod" never matches "preprod".
//
// # Caveats
//
// An unbounded configuration (MaxAttempts 0) pointed at a permanently-down
// server blocks the calling goroutine indefinitely; bound attempts or cancel
// the context if that is not acceptable. ModeForce replays writes after
// ambiguous partial failures and must only be used with idempotent
// operations.
package mysqlreconnect
