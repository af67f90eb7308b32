package mysqlreconnect

import (
	"context"
	"database/sql"
	"errors"
)

// Pool wraps a *sql.DB and routes statement execution through the retry
// engine, attaching SQL text and connection metadata to every decision.
type Pool struct {
	db        *sql.DB
	desc      *ConnectionDescriptor
	reconnect *Reconnector
}

// NewPool opens a database handle and verifies it with a ping. The DSN is
// also parsed for connection metadata; a DSN the mysql driver cannot parse
// (e.g. a sqlmock registration key) leaves the pool without a descriptor,
// which simply skips allow-list checks.
func NewPool(ctx context.Context, driverName, dsn string) (*Pool, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	desc, err := DescriptorFromDSN(dsn)
	if err != nil {
		desc = nil
	}
	return &Pool{db: db, desc: desc, reconnect: NewReconnector(db)}, nil
}

// DB exposes the underlying handle for integrations that need it directly.
func (p *Pool) DB() *sql.DB { return p.db }

// Descriptor returns the connection metadata parsed from the DSN, or nil.
func (p *Pool) Descriptor() *ConnectionDescriptor { return p.desc }

// Close closes the underlying handle.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Ping checks connectivity without retry.
func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	return p.db.PingContext(ctx)
}

func (p *Pool) runOptions(ctx context.Context, query string) []RunOption {
	return []RunOption{
		WithSQL(query),
		WithConnection(p.desc),
		WithOnError(p.reconnect.OnError(ctx)),
	}
}

// Exec executes a statement, retrying transient failures per the current
// configuration and the statement's read/write classification.
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("nil pool")
	}
	return RunValue(ctx, func() (sql.Result, error) {
		return p.db.ExecContext(ctx, query, args...)
	}, p.runOptions(ctx, query)...)
}

// Query runs a query with the same retry treatment as Exec.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("nil pool")
	}
	return RunValue(ctx, func() (*sql.Rows, error) {
		return p.db.QueryContext(ctx, query, args...)
	}, p.runOptions(ctx, query)...)
}

// QueryRow is a plain passthrough: *sql.Row defers its error to Scan, so
// there is nothing to retry here.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

// Tx wraps *sql.Tx for use inside WithinTx and RetryableTx callbacks.
type Tx struct {
	inner *sql.Tx
}

// Exec executes within the transaction.
func (tx *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx == nil || tx.inner == nil {
		return nil, sql.ErrTxDone
	}
	return tx.inner.ExecContext(ctx, query, args...)
}

// Query runs a query within the transaction.
func (tx *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if tx == nil || tx.inner == nil {
		return nil, sql.ErrTxDone
	}
	return tx.inner.QueryContext(ctx, query, args...)
}

func (p *Pool) runTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Tx{inner: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// WithinTx runs fn inside a transaction with automatic retry suppressed for
// the whole span: replaying an individual statement against a connection
// whose transaction state was lost would silently commit partial work.
func (p *Pool) WithinTx(ctx context.Context, fn func(*Tx) error) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	return WithoutRetry(ctx, func(ctx context.Context) error {
		return p.runTx(ctx, fn)
	})
}

// RetryableTx retries the whole begin/fn/commit unit under a Force-mode
// override. Only safe when fn is idempotent; a replay re-executes everything
// fn already did.
func (p *Pool) RetryableTx(ctx context.Context, fn func(*Tx) error) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	return Run(ctx, func() error {
		return p.runTx(ctx, fn)
	}, WithConnection(p.desc), WithOnError(p.reconnect.OnError(ctx)), WithMode(ModeForce))
}
