package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizchat/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Store(ctx context.Context, data []byte, name, contentType string) (string, error) {
	args := m.Called(data, name, contentType)
	return args.String(0), args.Error(1)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	payload := []byte("hello, world")
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("stores decoded data", func(t *testing.T) {
		store := &mockStore{}
		store.On("Store", payload, "notes.txt", "text/plain").Return("https://cdn/notes.txt", nil).Once()
		svc := NewUploadService(store, 1<<20, NewValidator())

		res, err := svc.Upload(ctx, model.UploadRequest{FileData: encoded, FileName: "notes.txt", FileType: "text/plain"})
		require.NoError(t, err)
		assert.Equal(t, &model.UploadResult{FileURL: "https://cdn/notes.txt", FileName: "notes.txt", FileSize: int64(len(payload))}, res)
		store.AssertExpectations(t)
	})

	t.Run("data url and default name", func(t *testing.T) {
		store := &mockStore{}
		store.On("Store", payload, mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "file_")
		}), "application/octet-stream").Return("u", nil).Once()
		svc := NewUploadService(store, 1<<20, NewValidator())

		res, err := svc.Upload(ctx, model.UploadRequest{FileData: "data:text/plain;base64," + encoded})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.FileName, "file_"))
		store.AssertExpectations(t)
	})

	tests := []struct {
		name string
		req  model.UploadRequest
		max  int64
	}{
		{"missing data", model.UploadRequest{}, 1 << 20},
		{"bad base64", model.UploadRequest{FileData: "%%%"}, 1 << 20},
		{"too large", model.UploadRequest{FileData: encoded}, 4},
		{"blocked extension", model.UploadRequest{FileData: encoded, FileName: "run.exe"}, 1 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			svc := NewUploadService(store, tt.max, NewValidator())
			_, err := svc.Upload(ctx, tt.req)
			requireKind(t, err, KindValidation)
			store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		store := &mockStore{}
		store.On("Store", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down"))
		svc := NewUploadService(store, 1<<20, NewValidator())
		_, err := svc.Upload(ctx, model.UploadRequest{FileData: encoded, FileName: "a.txt"})
		requireKind(t, err, KindInternal)
		var se *Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "Upload failed", se.Message)
	})
}
