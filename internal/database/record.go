package database

import (
	"bytes"
	"database/sql"
	"encoding/json"
)

// Record is one result row: column names in select order mapped to the
// values the driver produced. Text that a driver hands back as []byte is
// stored as string so callers see the same shape from both engines.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord builds a record from parallel column and value slices.
func NewRecord(columns []string, values []any) Record {
	r := Record{
		columns: columns,
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		r.values[col] = normalizeDriverValue(values[i])
	}
	return r
}

// Columns returns the column names in select order.
func (r Record) Columns() []string { return r.columns }

// Get returns the value for col, or nil if the column is absent or NULL.
func (r Record) Get(col string) any { return r.values[col] }

// Has reports whether col is part of the record.
func (r Record) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Int64 returns the integer value of col.
func (r Record) Int64(col string) (int64, bool) {
	switch v := r.values[col].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func normalizeDriverValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, 8)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, NewRecord(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
