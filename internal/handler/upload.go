package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizchat/internal/blob"
	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/model"
)

type Uploader interface {
	Upload(ctx context.Context, req model.UploadRequest) (*model.UploadResult, error)
}

// FileServer is implemented by *blob.DiskStore.
type FileServer interface {
	Serve(w http.ResponseWriter, name string) error
}

type UploadHandler struct {
	svc     Uploader
	files   FileServer
	maxBody int64
}

// NewUploadHandler accepts bodies up to maxUpload bytes of decoded data; files may be nil for the S3 backend.
func NewUploadHandler(svc Uploader, files FileServer, maxUpload int64) *UploadHandler {
	// base64 inflates by 4/3; leave room for the JSON envelope.
	return &UploadHandler{svc: svc, files: files, maxBody: maxUpload/3*4 + 64<<10}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req model.UploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.svc.Upload(r.Context(), req)
	if err != nil {
		writeServiceError(w, "upload", err)
		return
	}
	logger.Infof("upload: stored %s (%d bytes)", resp.FileName, resp.FileSize)
	writeJSON(w, http.StatusOK, resp)
}

func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	err := h.files.Serve(w, chi.URLParam(r, "name"))
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		logger.Errorf("serve file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
	}
}
