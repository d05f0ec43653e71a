package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

const selectEntries = `
SELECT id, destination, start_date, end_date, description,
       highlights, photo_links, created_at, updated_at
FROM journal_entries`

// EntryRepository implements the journal entry operations. Each call
// acquires and releases its own connection. The query timeout starts once
// the connection is held; connecting is bounded by the adapter.
type EntryRepository struct {
	db      Connector
	log     *zap.Logger
	timeout time.Duration
}

// List returns every entry, most recent trip first.
func (r *EntryRepository) List(ctx context.Context) ([]models.JournalEntry, error) {
	conn, err := r.connect(ctx, "list entries")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// ISO dates sort lexicographically in chronological order.
	records, err := conn.Query(ctx, selectEntries+`
ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, r.queryError("list entries", err)
	}

	out := make([]models.JournalEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, entryFromRecord(rec))
	}
	return out, nil
}

// GetByID fetches one entry, or ErrNotFound.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (models.JournalEntry, error) {
	conn, err := r.connect(ctx, "get entry")
	if err != nil {
		return models.JournalEntry{}, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := conn.QueryOne(ctx, conn.Rebind(selectEntries+`
WHERE id = ?`), id)
	if errors.Is(err, database.ErrNoRows) {
		return models.JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return models.JournalEntry{}, r.queryError("get entry", err, zap.Int64("id", id))
	}
	return entryFromRecord(rec), nil
}

// Create validates and inserts an entry, returning its id.
func (r *EntryRepository) Create(ctx context.Context, in models.EntryInput) (int64, error) {
	if err := Validate(in); err != nil {
		return 0, err
	}

	conn, err := r.connect(ctx, "create entry")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := conn.Begin(ctx); err != nil {
		return 0, r.queryError("create entry", err)
	}
	id, err := conn.Insert(ctx, conn.Rebind(`
INSERT INTO journal_entries
    (destination, start_date, end_date, description, highlights, photo_links)
VALUES (?, ?, ?, ?, ?, ?)`),
		in.Destination, in.StartDate, in.EndDate, in.Description, in.Highlights, in.PhotoLinks,
	)
	if err != nil {
		return 0, r.queryError("create entry", err)
	}
	if err := conn.Commit(); err != nil {
		return 0, r.queryError("create entry", err)
	}
	return id, nil
}

// Update overwrites all mutable fields of an existing entry. The existence
// check and the write share one transaction.
func (r *EntryRepository) Update(ctx context.Context, id int64, in models.EntryInput) error {
	if err := Validate(in); err != nil {
		return err
	}

	conn, err := r.connect(ctx, "update entry")
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := conn.Begin(ctx); err != nil {
		return r.queryError("update entry", err, zap.Int64("id", id))
	}
	if err := r.mustExist(ctx, conn, "update entry", id); err != nil {
		return err
	}
	_, err = conn.Exec(ctx, conn.Rebind(`
UPDATE journal_entries
SET destination = ?, start_date = ?, end_date = ?,
    description = ?, highlights = ?, photo_links = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?`),
		in.Destination, in.StartDate, in.EndDate, in.Description, in.Highlights, in.PhotoLinks, id,
	)
	if err != nil {
		return r.queryError("update entry", err, zap.Int64("id", id))
	}
	if err := conn.Commit(); err != nil {
		return r.queryError("update entry", err, zap.Int64("id", id))
	}
	return nil
}

// Delete removes an existing entry, or returns ErrNotFound.
func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	conn, err := r.connect(ctx, "delete entry")
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := conn.Begin(ctx); err != nil {
		return r.queryError("delete entry", err, zap.Int64("id", id))
	}
	if err := r.mustExist(ctx, conn, "delete entry", id); err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, conn.Rebind(`DELETE FROM journal_entries WHERE id = ?`), id); err != nil {
		return r.queryError("delete entry", err, zap.Int64("id", id))
	}
	if err := conn.Commit(); err != nil {
		return r.queryError("delete entry", err, zap.Int64("id", id))
	}
	return nil
}

// Validate checks the required fields in the order the API reports them.
func Validate(in models.EntryInput) error {
	switch {
	case in.Destination == "":
		return &ValidationError{Field: "destination"}
	case in.StartDate == "":
		return &ValidationError{Field: "start_date"}
	case in.EndDate == "":
		return &ValidationError{Field: "end_date"}
	}
	return nil
}

func (r *EntryRepository) mustExist(ctx context.Context, conn *database.Conn, op string, id int64) error {
	_, err := conn.QueryOne(ctx, conn.Rebind(`SELECT id FROM journal_entries WHERE id = ?`), id)
	if errors.Is(err, database.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return r.queryError(op, err, zap.Int64("id", id))
	}
	return nil
}

func (r *EntryRepository) connect(ctx context.Context, op string) (*database.Conn, error) {
	conn, err := r.db.Connect(ctx)
	if err != nil {
		r.log.Error("database connection failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return conn, nil
}

func (r *EntryRepository) queryError(op string, err error, fields ...zap.Field) error {
	r.log.Error("database error", append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
	return fmt.Errorf("%s: %w", op, ErrQuery)
}

func entryFromRecord(rec database.Record) models.JournalEntry {
	id, _ := rec.Int64("id")
	return models.JournalEntry{
		ID:          id,
		Destination: stringValue(rec.Get("destination")),
		StartDate:   formatTime(rec.Get("start_date"), dateLayout),
		EndDate:     formatTime(rec.Get("end_date"), dateLayout),
		Description: stringValue(rec.Get("description")),
		Highlights:  stringValue(rec.Get("highlights")),
		PhotoLinks:  stringValue(rec.Get("photo_links")),
		CreatedAt:   formatTime(rec.Get("created_at"), timestampLayout),
		UpdatedAt:   formatTime(rec.Get("updated_at"), timestampLayout),
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// formatTime renders native date/time values (PostgreSQL, and SQLite
// columns the driver parses) and re-formats time strings in layout.
// Strings that are not recognizable times pass through unchanged.
func formatTime(v any, layout string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(layout)
	case string:
		for _, in := range []string{time.RFC3339Nano, timestampLayout, dateLayout} {
			if parsed, err := time.Parse(in, t); err == nil {
				return parsed.Format(layout)
			}
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}
