package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const maxPhotoBytes = 10 << 20 // 10MB

// PhotoUploader stores a photo and returns its public URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, photo io.Reader) (string, error)
}

// UploadResponse carries the URL to add to an entry's photo_links.
type UploadResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

type UploadHandler struct {
	uploader PhotoUploader
	log      *zap.Logger
}

// NewUploadHandler returns the photo upload handler; a nil uploader means
// uploads are not configured and every request gets 503.
func NewUploadHandler(uploader PhotoUploader, log *zap.Logger) *UploadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadHandler{uploader: uploader, log: log}
}

// UploadPhoto accepts a multipart "file" field holding an image.
func (h *UploadHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Photo uploads are not configured")
		return
	}

	// Leave room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Photo must be 10MB or smaller")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > maxPhotoBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Photo must be 10MB or smaller")
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if !strings.HasPrefix(http.DetectContentType(sniff[:n]), "image/") {
		writeError(w, http.StatusBadRequest, "File must be an image")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	url, err := h.uploader.UploadPhoto(r.Context(), file)
	if err != nil {
		h.log.Error("photo upload failed", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{URL: url, Message: "Photo uploaded successfully"})
}
