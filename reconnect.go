package mysqlreconnect

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Reconnector pings a *sql.DB until the server answers again, forcing the
// driver to discard dead connections before the next retry attempt. It is the
// default on-error hook for pool-level retries.
type Reconnector struct {
	db              *sql.DB
	initialInterval time.Duration
	maxElapsed      time.Duration
}

// NewReconnector builds a Reconnector with a bounded exponential ping
// schedule. The bound keeps a permanently-down server from stalling the
// on-error hook; the retry loop's own backoff still applies afterwards.
func NewReconnector(db *sql.DB) *Reconnector {
	return &Reconnector{
		db:              db,
		initialInterval: 100 * time.Millisecond,
		maxElapsed:      5 * time.Second,
	}
}

// Reconnect pings until the server answers or the backoff gives up.
func (r *Reconnector) Reconnect(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval
	bo.MaxElapsedTime = r.maxElapsed
	return backoff.Retry(func() error {
		return r.db.PingContext(ctx)
	}, backoff.WithContext(bo, ctx))
}

// OnError adapts Reconnect to the executor's on-error callback shape. The
// ping result is deliberately ignored: a still-down server simply fails the
// next attempt.
func (r *Reconnector) OnError(ctx context.Context) func(error) {
	return func(error) {
		_ = r.Reconnect(ctx)
	}
}
