package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultConnectTimeout = 5 * time.Second

// Options tune an Adapter.
type Options struct {
	// ConnectTimeout bounds a single connection attempt. Zero means 5s.
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

// Adapter hands out connections to whichever engine is active, falling
// back from the primary to the fallback engine the first time the primary
// cannot be reached. The switch is permanent for the adapter's lifetime.
type Adapter struct {
	engines        [2]Engine
	active         *ActiveEngine
	connectTimeout time.Duration
	log            *zap.Logger

	mu  sync.Mutex
	dbs [2]*sql.DB
}

// NewAdapter builds an adapter over the two engines. primary may be nil when
// only the fallback is configured; active is shared state the caller owns.
func NewAdapter(primary, fallback Engine, active *ActiveEngine, opts Options) *Adapter {
	if active == nil {
		active = NewActiveEngine(false)
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Adapter{
		engines:        [2]Engine{Primary: primary, Fallback: fallback},
		active:         active,
		connectTimeout: opts.ConnectTimeout,
		log:            opts.Logger,
	}
}

// Active returns the engine new connections currently go to.
func (a *Adapter) Active() EngineKind { return a.active.Load() }

// ActiveEngineName returns the driver family of the active engine.
func (a *Adapter) ActiveEngineName() string {
	if e := a.engines[a.active.Load()]; e != nil {
		return e.Name()
	}
	return "none"
}

// Connect acquires a connection from the active engine. If that is the
// primary and it fails, the adapter switches to the fallback for good and
// tries once more there. A failure caused by ctx itself being done says
// nothing about the primary, so it never triggers the switch.
func (a *Adapter) Connect(ctx context.Context) (*Conn, error) {
	var primaryErr error
	if a.active.Load() == Primary {
		conn, err := a.acquire(ctx, Primary)
		if err == nil {
			return conn, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ConnectionError{Primary: err, Fallback: ctxErr}
		}
		primaryErr = err
		if a.active.SwitchToFallback() {
			a.log.Warn("primary database unreachable, switching to fallback",
				zap.String("primary", a.engineName(Primary)),
				zap.String("fallback", a.engineName(Fallback)),
				zap.Error(err),
			)
		}
	}

	conn, err := a.acquire(ctx, Fallback)
	if err != nil {
		return nil, &ConnectionError{Primary: primaryErr, Fallback: err}
	}
	return conn, nil
}

// Bootstrap runs the active engine's Bootstrap step.
func (a *Adapter) Bootstrap(ctx context.Context) error {
	e := a.engines[a.active.Load()]
	if e == nil {
		return fmt.Errorf("%s engine not configured", a.active.Load())
	}
	ctx, cancel := context.WithTimeout(ctx, a.connectTimeout)
	defer cancel()
	return e.Bootstrap(ctx)
}

// Close closes every handle the adapter opened.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i, db := range a.dbs {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
		a.dbs[i] = nil
	}
	return errors.Join(errs...)
}

func (a *Adapter) engineName(kind EngineKind) string {
	if e := a.engines[kind]; e != nil {
		return e.Name()
	}
	return "none"
}

func (a *Adapter) handle(kind EngineKind) (*sql.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if db := a.dbs[kind]; db != nil {
		return db, nil
	}
	e := a.engines[kind]
	if e == nil {
		return nil, fmt.Errorf("%s engine not configured", kind)
	}
	db, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.Name(), err)
	}
	a.dbs[kind] = db
	return db, nil
}

func (a *Adapter) acquire(ctx context.Context, kind EngineKind) (*Conn, error) {
	db, err := a.handle(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.connectTimeout)
	defer cancel()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", a.engines[kind].Name(), err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", a.engines[kind].Name(), err)
	}
	return &Conn{engine: a.engines[kind], conn: conn}, nil
}

// Conn is one acquired connection. It is not safe for concurrent use and
// must be closed on every path.
type Conn struct {
	engine Engine
	conn   *sql.Conn
	tx     *sql.Tx
}

// Engine returns the engine this connection belongs to.
func (c *Conn) Engine() Engine { return c.engine }

// Placeholder returns the bind token for the n-th (1-based) parameter.
func (c *Conn) Placeholder(n int) string { return c.engine.Placeholder(n) }

// Rebind rewrites each '?' outside single-quoted literals into the
// engine's placeholder, numbering them left to right.
func (c *Conn) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString(c.engine.Placeholder(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c *Conn) q() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.conn
}

// Query runs a statement and returns every row.
func (c *Conn) Query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := c.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// QueryOne returns the first row, or ErrNoRows.
func (c *Conn) QueryOne(ctx context.Context, query string, args ...any) (Record, error) {
	records, err := c.Query(ctx, query, args...)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNoRows
	}
	return records[0], nil
}

// Exec runs a statement and returns the number of affected rows.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Insert runs an INSERT and returns the id the engine assigned to the row.
func (c *Conn) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	return c.engine.InsertReturningID(ctx, c.q(), query, args...)
}

// Begin starts a transaction; later statements run inside it until
// Commit or Rollback.
func (c *Conn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return errors.New("transaction already open")
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction. Without one it is a no-op, since
// statements outside a transaction are already committed.
func (c *Conn) Commit() error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Commit()
	c.tx = nil
	return err
}

// Rollback aborts the open transaction, if any.
func (c *Conn) Rollback() error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}

// Close rolls back an unfinished transaction and releases the connection.
func (c *Conn) Close() error {
	rbErr := c.Rollback()
	if errors.Is(rbErr, sql.ErrTxDone) {
		rbErr = nil
	}
	return errors.Join(rbErr, c.conn.Close())
}
