package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type fakeUploader struct {
	got []byte
	err error
}

func (u *fakeUploader) UploadPhoto(_ context.Context, photo io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(photo)
	if err != nil {
		return "", err
	}
	u.got = b
	return "https://res.cloudinary.com/demo/image/upload/photo.png", nil
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPhoto(t *testing.T) {
	up := &fakeUploader{}
	h := NewUploadHandler(up, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.UploadPhoto(rec, multipartRequest(t, "file", pngHeader))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["url"] != "https://res.cloudinary.com/demo/image/upload/photo.png" {
		t.Errorf("url = %v", body["url"])
	}
	if !bytes.Equal(up.got, pngHeader) {
		t.Errorf("uploader got %d bytes, want the full file", len(up.got))
	}
}

func TestUploadPhotoRejects(t *testing.T) {
	tests := []struct {
		name     string
		uploader PhotoUploader
		req      func(t *testing.T) *http.Request
		want     int
	}{
		{
			name:     "uploads disabled",
			uploader: nil,
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, "file", pngHeader) },
			want:     http.StatusServiceUnavailable,
		},
		{
			name:     "not an image",
			uploader: &fakeUploader{},
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, "file", []byte("plain text notes")) },
			want:     http.StatusBadRequest,
		},
		{
			name:     "wrong field",
			uploader: &fakeUploader{},
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, "photo", pngHeader) },
			want:     http.StatusBadRequest,
		},
		{
			name:     "not multipart",
			uploader: &fakeUploader{},
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewReader(pngHeader))
			},
			want: http.StatusBadRequest,
		},
		{
			name:     "upload fails",
			uploader: &fakeUploader{err: errors.New("cloudinary down")},
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, "file", pngHeader) },
			want:     http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewUploadHandler(tt.uploader, zaptest.NewLogger(t)).UploadPhoto(rec, tt.req(t))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
