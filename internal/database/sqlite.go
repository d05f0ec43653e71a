package database

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the fallback engine: a single local file, opened with the
// pure-Go modernc.org/sqlite driver so no cgo toolchain is needed.
type SQLite struct {
	path string
}

// NewSQLite returns the fallback engine storing its data at path.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

func (s *SQLite) Kind() EngineKind { return Fallback }

func (s *SQLite) Name() string { return "sqlite" }

// Path is the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Open() (*sql.DB, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.DSN())
	if err != nil {
		return nil, err
	}
	// Conservative settings for SQLite in a small service
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// DSN is a file: URI for the database path with busy timeout and WAL
// pragmas. The path is percent-escaped so '?' or '#' in it cannot leak
// into the pragma query.
func (s *SQLite) DSN() string {
	u := url.URL{
		Scheme:   "file",
		Path:     s.path,
		OmitHost: true,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
	}
	return u.String()
}

func (s *SQLite) Placeholder(int) string { return "?" }

// Bootstrap creates the parent directory of the database file.
func (s *SQLite) Bootstrap(context.Context) error {
	return s.ensureDir()
}

func (s *SQLite) ensureDir() error {
	dir := filepath.Dir(s.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *SQLite) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			destination TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			description TEXT,
			highlights TEXT,
			photo_links TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_start_date ON journal_entries(start_date)`,
	}
}

func (s *SQLite) InsertReturningID(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
