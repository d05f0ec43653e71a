package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/lib/pq"
)

const postgresMaintenanceDB = "postgres"

// PostgresOptions configures the primary engine.
type PostgresOptions struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	ConnectTimeout time.Duration
	MaxOpenConns   int
}

// Postgres is the primary engine, backed by lib/pq.
type Postgres struct {
	opts PostgresOptions
}

// NewPostgres returns the primary engine for opts.
func NewPostgres(opts PostgresOptions) *Postgres {
	if opts.SSLMode == "" {
		opts.SSLMode = "disable"
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	return &Postgres{opts: opts}
}

func (p *Postgres) Kind() EngineKind { return Primary }

func (p *Postgres) Name() string { return "postgres" }

// DSN returns the connection URL for the named database.
func (p *Postgres) DSN(database string) string {
	q := url.Values{}
	q.Set("sslmode", p.opts.SSLMode)
	if p.opts.ConnectTimeout > 0 {
		// lib/pq takes whole seconds and treats 0 as "wait forever"
		secs := int(p.opts.ConnectTimeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(p.opts.Host, strconv.Itoa(p.opts.Port)),
		Path:     "/" + database,
		RawQuery: q.Encode(),
	}
	if p.opts.User != "" {
		u.User = url.UserPassword(p.opts.User, p.opts.Password)
	}
	return u.String()
}

func (p *Postgres) Open() (*sql.DB, error) {
	db, err := sql.Open("postgres", p.DSN(p.opts.Database))
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(p.opts.MaxOpenConns)
	db.SetMaxIdleConns(min(5, p.opts.MaxOpenConns))
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (p *Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// Bootstrap creates the configured database through the maintenance
// database when it does not exist yet.
func (p *Postgres) Bootstrap(ctx context.Context) error {
	db, err := sql.Open("postgres", p.DSN(postgresMaintenanceDB))
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`,
		p.opts.Database,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database %q: %w", p.opts.Database, err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE does not accept bind parameters.
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(p.opts.Database)); err != nil {
		return fmt.Errorf("create database %q: %w", p.opts.Database, err)
	}
	return nil
}

func (p *Postgres) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id SERIAL PRIMARY KEY,
			destination VARCHAR(255) NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			description TEXT,
			highlights TEXT,
			photo_links TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_start_date ON journal_entries(start_date)`,
	}
}

// InsertReturningID appends RETURNING id; lib/pq does not implement LastInsertId.
func (p *Postgres) InsertReturningID(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
