package database

import (
	"context"
	"database/sql"
	"sync/atomic"
)

// EngineKind identifies one of the two interchangeable relational engines.
type EngineKind int32

const (
	// Primary is the server database (PostgreSQL).
	Primary EngineKind = iota
	// Fallback is the embedded file database (SQLite).
	Fallback
)

func (k EngineKind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// querier is satisfied by both *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Engine hides everything that differs between the two database engines:
// driver and DSN, placeholder syntax, DDL, and how an inserted id is read back.
type Engine interface {
	Kind() EngineKind
	// Name is the engine family, e.g. "postgres" or "sqlite".
	Name() string
	// Open returns a handle without dialing; the adapter dials on acquire.
	Open() (*sql.DB, error)
	// Placeholder returns the bind token for the n-th (1-based) parameter.
	Placeholder(n int) string
	// Bootstrap prepares whatever must exist before the first connection
	// (the database itself for PostgreSQL, the parent directory for SQLite).
	Bootstrap(ctx context.Context) error
	// Schema returns the idempotent DDL for the journal table.
	Schema() []string
	// InsertReturningID executes an INSERT and returns the engine-assigned id.
	InsertReturningID(ctx context.Context, q querier, query string, args ...any) (int64, error)
}

// ActiveEngine is the selector shared by every connection of one Adapter.
// It starts at Primary (or Fallback when forced) and only ever moves
// from Primary to Fallback.
type ActiveEngine struct {
	kind atomic.Int32
}

// NewActiveEngine returns a selector pointing at the primary engine,
// or at the fallback when forceFallback is set.
func NewActiveEngine(forceFallback bool) *ActiveEngine {
	a := &ActiveEngine{}
	if forceFallback {
		a.kind.Store(int32(Fallback))
	}
	return a
}

// Load returns the engine new connections should use.
func (a *ActiveEngine) Load() EngineKind {
	return EngineKind(a.kind.Load())
}

// SwitchToFallback moves the selector to Fallback. It reports whether this
// call performed the transition.
func (a *ActiveEngine) SwitchToFallback() bool {
	return a.kind.CompareAndSwap(int32(Primary), int32(Fallback))
}
