package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/repository"
)

// fakeStore records calls and returns err for every operation when set.
type fakeStore struct {
	entries map[int64]models.JournalEntry
	nextID  int64
	err     error
	updated models.EntryInput
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[int64]models.JournalEntry{}, nextID: 1}
}

func (s *fakeStore) List(context.Context) ([]models.JournalEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.JournalEntry{}
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (models.JournalEntry, error) {
	if s.err != nil {
		return models.JournalEntry{}, s.err
	}
	e, ok := s.entries[id]
	if !ok {
		return models.JournalEntry{}, repository.ErrNotFound
	}
	return e, nil
}

func (s *fakeStore) Create(_ context.Context, in models.EntryInput) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := repository.Validate(in); err != nil {
		return 0, err
	}
	id := s.nextID
	s.nextID++
	s.entries[id] = models.JournalEntry{ID: id, Destination: in.Destination, StartDate: in.StartDate, EndDate: in.EndDate}
	return id, nil
}

func (s *fakeStore) Update(_ context.Context, id int64, in models.EntryInput) error {
	if s.err != nil {
		return s.err
	}
	if err := repository.Validate(in); err != nil {
		return err
	}
	if _, ok := s.entries[id]; !ok {
		return repository.ErrNotFound
	}
	s.updated = in
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func newEntryRouter(t *testing.T, store EntryStore) http.Handler {
	t.Helper()
	h := NewEntryHandler(store, zaptest.NewLogger(t))
	r := chi.NewRouter()
	r.Get("/api/entries", h.ListEntries)
	r.Post("/api/entries", h.CreateEntry)
	r.Get("/api/entries/{id}", h.GetEntry)
	r.Put("/api/entries/{id}", h.UpdateEntry)
	r.Delete("/api/entries/{id}", h.DeleteEntry)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestCreateEntry(t *testing.T) {
	store := newFakeStore()
	h := newEntryRouter(t, store)

	rec := do(t, h, http.MethodPost, "/api/entries",
		`{"destination":"Lisbon","start_date":"2024-05-01","end_date":"2024-05-08"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	want := map[string]any{"id": float64(1), "message": "Entry created successfully"}
	if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestCreateEntryBadRequests(t *testing.T) {
	h := newEntryRouter(t, newFakeStore())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"destination":`, "Invalid request body"},
		{"missing destination", `{"start_date":"2024-05-01","end_date":"2024-05-08"}`, "Missing required field: destination"},
		{"missing start_date", `{"destination":"Lisbon","end_date":"2024-05-08"}`, "Missing required field: start_date"},
		{"missing end_date", `{"destination":"Lisbon","start_date":"2024-05-01"}`, "Missing required field: end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/entries", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.want {
				t.Errorf("error = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateEntryBodyTooLarge(t *testing.T) {
	h := newEntryRouter(t, newFakeStore())
	body := fmt.Sprintf(`{"destination":"Lisbon","description":%q}`, strings.Repeat("x", maxEntryBodyBytes))
	rec := do(t, h, http.MethodPost, "/api/entries", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestGetEntry(t *testing.T) {
	store := newFakeStore()
	store.entries[7] = models.JournalEntry{ID: 7, Destination: "Kyoto", StartDate: "2024-04-01", EndDate: "2024-04-10"}
	h := newEntryRouter(t, store)

	rec := do(t, h, http.MethodGet, "/api/entries/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.JournalEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(store.entries[7], got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodGet, "/api/entries/8", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing entry status = %d, want 404", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Entry not found" {
		t.Errorf("error = %v", got)
	}

	rec = do(t, h, http.MethodGet, "/api/entries/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestListEntriesEmpty(t *testing.T) {
	rec := do(t, newEntryRouter(t, newFakeStore()), http.MethodGet, "/api/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestUpdateEntry(t *testing.T) {
	store := newFakeStore()
	store.entries[1] = models.JournalEntry{ID: 1, Destination: "Oslo"}
	h := newEntryRouter(t, store)

	body := `{"destination":"Bergen","start_date":"2024-07-01","end_date":"2024-07-05","highlights":"Fjords"}`
	rec := do(t, h, http.MethodPut, "/api/entries/1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	if got := decodeBody(t, rec)["message"]; got != "Entry updated successfully" {
		t.Errorf("message = %v", got)
	}
	want := models.EntryInput{Destination: "Bergen", StartDate: "2024-07-01", EndDate: "2024-07-05", Highlights: "Fjords"}
	if diff := cmp.Diff(want, store.updated); diff != "" {
		t.Errorf("update input mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodPut, "/api/entries/2", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing entry status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/api/entries/1", `{"destination":"Bergen"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid update status = %d, want 400", rec.Code)
	}
}

func TestDeleteEntry(t *testing.T) {
	store := newFakeStore()
	store.entries[3] = models.JournalEntry{ID: 3, Destination: "Cairo"}
	h := newEntryRouter(t, store)

	rec := do(t, h, http.MethodDelete, "/api/entries/3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Entry deleted successfully" {
		t.Errorf("message = %v", got)
	}

	rec = do(t, h, http.MethodDelete, "/api/entries/3", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestStoreErrorsMapToStatus(t *testing.T) {
	connErr := &database.ConnectionError{
		Primary:  errors.New("dial tcp: connection refused"),
		Fallback: errors.New("unable to open database file"),
	}
	tests := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		want   string
	}{
		{"list connection", connErr, http.MethodGet, "/api/entries", "", "Database connection failed"},
		{"list query", fmt.Errorf("list entries: %w", repository.ErrQuery), http.MethodGet, "/api/entries", "", "Failed to retrieve entries"},
		{"get query", repository.ErrQuery, http.MethodGet, "/api/entries/1", "", "Failed to retrieve entry"},
		{"create query", repository.ErrQuery, http.MethodPost, "/api/entries", `{"destination":"x"}`, "Failed to create entry"},
		{"delete connection", connErr, http.MethodDelete, "/api/entries/1", "", "Database connection failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.err = tt.err
			rec := do(t, newEntryRouter(t, store), tt.method, tt.path, tt.body)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.want {
				t.Errorf("error = %v, want %q", got, tt.want)
			}
		})
	}
}
