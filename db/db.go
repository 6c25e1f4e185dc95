// Package db is a thin, SQL-first wrapper over database/sql. It is NOT an
// ORM — all SQL is explicit and developer-controlled. It adds context-aware
// helpers, hook dispatch (logging, metrics) and unified error mapping.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening a database handle.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "mysql" or "sqlite3".
	DriverName string

	// Target names the database in errors and logs. It must not contain
	// credentials. Defaults to DriverName.
	Target string

	// Pool settings. Zero leaves the database/sql default in place.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Default query timeout applied when no deadline is set on the context.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// ConnectRetry controls retries of the initial ping. The zero value pings
	// once and fails immediately.
	ConnectRetry RetryConfig

	// Hooks executed around every statement (logging, metrics).
	// Nil entries are silently skipped.
	Hooks []Hook

	// ErrorMapper translates driver errors. Defaults to DefaultErrorMapper.
	ErrorMapper ErrorMapper
}

// ─────────────────────────────────────────────────────────────────────────────
// DB — the central type
// ─────────────────────────────────────────────────────────────────────────────

// DB wraps *sql.DB. Like *sql.DB it is safe for concurrent use by multiple
// goroutines; every method takes a context so callers control cancellation.
type DB struct {
	sqldb  *sql.DB
	cfg    Config
	hooks  hookChain
	errMap ErrorMapper
}

// Open opens the database described by cfg and verifies connectivity with Ping.
// Failures are returned as *ConnectionError. Callers are responsible for
// calling Close() when the application shuts down.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("userdb/db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("userdb/db: DriverName must not be empty")
	}
	if cfg.Target == "" {
		cfg.Target = cfg.DriverName
	}
	errMap := cfg.ErrorMapper
	if errMap == nil {
		errMap = DefaultErrorMapper()
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, &ConnectionError{Driver: cfg.DriverName, Descriptor: cfg.Target, Cause: err}
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	d := &DB{
		sqldb:  sqldb,
		cfg:    cfg,
		hooks:  newHookChain(cfg.Hooks),
		errMap: errMap,
	}

	if err := d.pingWithRetry(); err != nil {
		_ = sqldb.Close()
		return nil, &ConnectionError{Driver: cfg.DriverName, Descriptor: cfg.Target, Cause: err}
	}

	return d, nil
}

// MustOpen is like Open but panics on error. It keeps the fail-fast startup
// behaviour for programs that cannot do anything useful without a database.
func MustOpen(cfg Config) *DB {
	d, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

const pingTimeout = 5 * time.Second

func (d *DB) pingWithRetry() error {
	retry := d.cfg.ConnectRetry
	attempts := max(retry.MaxAttempts, 1)
	if retry.RetryOn == nil {
		retry.RetryOn = func(error) bool { return true }
	}

	budget := time.Duration(attempts) * (pingTimeout + retry.Delay)
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	return WithRetry(ctx, retry, func() error {
		pingCtx, pingCancel := context.WithTimeout(ctx, pingTimeout)
		defer pingCancel()
		return d.sqldb.PingContext(pingCtx)
	})
}

// Raw returns the underlying *sql.DB for advanced use cases.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// DriverName returns the database/sql driver the handle was opened with.
func (d *DB) DriverName() string { return d.cfg.DriverName }

// Close closes all pooled connections and frees resources.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.applyDefaultTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics for monitoring.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// Query execution helpers
// ─────────────────────────────────────────────────────────────────────────────

// Exec executes a statement that returns no rows (INSERT, UPDATE, DDL).
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.applyDefaultTimeout(ctx)
	defer cancel()
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows.
// The caller MUST close the returned *Rows.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	ctx, cancel := d.applyDefaultTimeout(ctx)
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{Rows: rows, cancel: cancel, errMap: d.errMap}, nil
}

// QueryRow executes a query expected to return at most one row.
// ErrNotFound is returned from Scan when no row matches.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := d.applyDefaultTimeout(ctx)
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	d.hooks.After(ctx, query, args, time.Since(start), d.mapErr(raw.Err()))
	return &Row{raw: raw, cancel: cancel, errMap: d.errMap}
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (d *DB) applyDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.DefaultTimeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {} // caller already set a deadline
	}
	return context.WithTimeout(ctx, d.cfg.DefaultTimeout)
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row / Rows — wrap database/sql results to translate errors uniformly
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw    *sql.Row
	cancel context.CancelFunc
	errMap ErrorMapper
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	defer r.cancel()
	err := r.raw.Scan(dest...)
	if err == nil {
		return nil
	}
	return r.errMap.Map(err)
}

// Rows wraps *sql.Rows; Close also releases the statement's timeout.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
	errMap ErrorMapper
}

// Close closes the result set.
func (r *Rows) Close() error {
	defer r.cancel()
	return r.Rows.Close()
}

// Err returns the mapped iteration error, if any.
func (r *Rows) Err() error {
	err := r.Rows.Err()
	if err == nil {
		return nil
	}
	return r.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Querier — the shared interface accepted by repositories
// ─────────────────────────────────────────────────────────────────────────────

// Querier is the minimal statement surface repositories depend on.
// *DB satisfies it; tests may substitute their own implementation.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
}

var _ Querier = (*DB)(nil)
