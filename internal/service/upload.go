package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bizchat/internal/blob"
	"github.com/bizchat/internal/model"
)

type UploadService struct {
	store     blob.Store
	maxSize   int64
	validator *validator.Validate
}

func NewUploadService(store blob.Store, maxSize int64, v *validator.Validate) *UploadService {
	return &UploadService{store: store, maxSize: maxSize, validator: v}
}

// Upload decodes base64 file_data, checks it and hands it to the blob store.
func (s *UploadService) Upload(ctx context.Context, req model.UploadRequest) (*model.UploadResult, error) {
	if req.FileData == "" {
		return nil, NewValidationError("file_data required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	data, err := decodeBase64(req.FileData)
	if err != nil {
		return nil, NewValidationError("Invalid base64 data")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, NewValidationError("file too large")
	}
	name := blob.SafeFilename(req.FileName)
	if name == "" {
		name = "file_" + uuid.New().String()
	}
	if err := blob.Check(name, data); err != nil {
		if errors.Is(err, blob.ErrBlockedType) || errors.Is(err, blob.ErrContentMismatch) {
			return nil, NewValidationError(err.Error())
		}
		return nil, NewInternalError("upload.Upload", err)
	}
	contentType := req.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := s.store.Store(ctx, data, name, contentType)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "Upload failed", Err: err}
	}
	return &model.UploadResult{FileURL: url, FileName: name, FileSize: int64(len(data))}, nil
}

// decodeBase64 accepts plain base64 or a data: URL.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
