package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// InitSchema makes sure the journal table exists on the active engine.
// Failures are logged and swallowed: the table usually exists already, and
// callers must not rely on it existing after this returns.
func (a *Adapter) InitSchema(ctx context.Context) {
	if err := a.EnsureSchema(ctx); err != nil {
		a.log.Warn("schema initialization failed", zap.Error(err))
		return
	}
	a.log.Info("database initialized", zap.String("engine", a.ActiveEngineName()))
}

// EnsureSchema is InitSchema with the error returned.
func (a *Adapter) EnsureSchema(ctx context.Context) error {
	// The primary may be unreachable here; Connect below falls back.
	if err := a.Bootstrap(ctx); err != nil {
		a.log.Debug("bootstrap skipped", zap.String("engine", a.ActiveEngineName()), zap.Error(err))
	}

	conn, err := a.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Begin(ctx); err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	for _, stmt := range conn.Engine().Schema() {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s schema: %w", conn.Engine().Name(), err)
		}
	}
	if err := conn.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
