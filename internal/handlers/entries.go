package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/repository"
)

const maxEntryBodyBytes = 1 << 20

// EntryStore is the part of the entry repository the handlers need.
type EntryStore interface {
	List(ctx context.Context) ([]models.JournalEntry, error)
	GetByID(ctx context.Context, id int64) (models.JournalEntry, error)
	Create(ctx context.Context, in models.EntryInput) (int64, error)
	Update(ctx context.Context, id int64, in models.EntryInput) error
	Delete(ctx context.Context, id int64) error
}

// EntryHandler serves /api/entries.
type EntryHandler struct {
	entries EntryStore
	log     *zap.Logger
}

func NewEntryHandler(entries EntryStore, log *zap.Logger) *EntryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntryHandler{entries: entries, log: log}
}

// ListEntries returns all journal entries, newest trip first.
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "Failed to retrieve entries")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetEntry returns a single journal entry.
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to retrieve entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// CreateEntry creates a new journal entry.
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	id, err := h.entries.Create(r.Context(), in)
	if err != nil {
		h.writeStoreError(w, err, "Failed to create entry")
		return
	}
	h.log.Info("entry created", zap.Int64("id", id))
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id, Message: "Entry created successfully"})
}

// UpdateEntry replaces every writable field of an existing entry.
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	in, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	if err := h.entries.Update(r.Context(), id, in); err != nil {
		h.writeStoreError(w, err, "Failed to update entry")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Entry updated successfully"})
}

// DeleteEntry removes a journal entry.
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to delete entry")
		return
	}
	h.log.Info("entry deleted", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Entry deleted successfully"})
}

func (h *EntryHandler) writeStoreError(w http.ResponseWriter, err error, message string) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Entry not found")
	case errors.Is(err, database.ErrConnection):
		writeError(w, http.StatusInternalServerError, "Database connection failed")
	default:
		writeError(w, http.StatusInternalServerError, message)
	}
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "Invalid entry id")
		return 0, false
	}
	return id, true
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (models.EntryInput, bool) {
	var in models.EntryInput
	r.Body = http.MaxBytesReader(w, r.Body, maxEntryBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return in, false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	return in, true
}
