package blob

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizchat/internal/config"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr error
	}{
		{"plain text", "notes.txt", []byte("hello"), nil},
		{"png ok", "a.PNG", pngHeader, nil},
		{"png mismatch", "a.png", []byte("not an image"), ErrContentMismatch},
		{"exe blocked", "setup.exe", []byte("MZ"), ErrBlockedType},
		{"script blocked", "run.sh", []byte("#!/bin/sh"), ErrBlockedType},
		{"no extension", "voice", []byte{1, 2, 3}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.file, tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "report.pdf", SafeFilename("../../etc/report.pdf"))
	assert.Equal(t, "a b.txt", SafeFilename(`C:\docs\a b.txt`))
	assert.Equal(t, "x.txt", SafeFilename("x\".txt"))
	assert.Equal(t, "", SafeFilename("   "))
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	k1 := ObjectKey("Photo.JPG", now)
	k2 := ObjectKey("Photo.JPG", now)
	assert.True(t, strings.HasPrefix(k1, "messenger/20260304_050607_"))
	assert.True(t, strings.HasSuffix(k1, ".jpg"))
	assert.NotEqual(t, k1, k2)
}

func TestDiskStore_StoreAndServe(t *testing.T) {
	s := NewDiskStore(t.TempDir(), "http://files.local")
	url, err := s.Store(context.Background(), []byte("hello world"), "greeting.txt", "text/plain")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://files.local/api/files/"))
	name := strings.TrimPrefix(url, "http://files.local/api/files/")

	rc, err := s.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello world", string(data))

	rec := httptest.NewRecorder()
	require.NoError(t, s.Serve(rec, name))
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	_, err = s.Open("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Open("../" + name)
	require.NoError(t, err, "path components are stripped")
}

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestS3Store_Store(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "files" && *in.ContentType == "image/png" &&
			strings.HasPrefix(*in.Key, "messenger/") && strings.HasSuffix(*in.Key, ".png")
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	s := NewS3Store(putter, &config.S3Config{Bucket: "files", Region: "eu-1", PublicDomain: "https://cdn.example.com"})
	url, err := s.Store(context.Background(), pngHeader, "pic.png", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/messenger/"))
	putter.AssertExpectations(t)
}

func TestS3Store_StoreError(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	s := NewS3Store(putter, &config.S3Config{Bucket: "files", Region: "eu-1"})
	_, err := s.Store(context.Background(), []byte("x"), "a.bin", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestS3Store_PublicURLWithoutDomain(t *testing.T) {
	s := NewS3Store(nil, &config.S3Config{Bucket: "files", Region: "eu-1"})
	assert.Equal(t, "https://files.s3.eu-1.amazonaws.com/messenger/k.png", s.PublicURL("messenger/k.png"))
}
