package blob

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bizchat/internal/logger"
)

// DiskStore keeps gzip-compressed files under dir and serves them at {baseURL}/api/files/{name}.
type DiskStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: baseURL, now: time.Now}
}

func (s *DiskStore) Store(ctx context.Context, data []byte, name, contentType string) (string, error) {
	defer logger.DeferLogDuration("blob.disk.Store", time.Now())()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("blob: create upload dir: %w", err)
	}
	// Keys are flattened to a single file name on disk.
	file := path.Base(ObjectKey(name, s.now()))
	dstPath := filepath.Join(s.dir, file+".gz")
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("blob: create file: %w", err)
	}
	gz := gzip.NewWriter(dst)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("blob: write: %w", err)
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("blob: flush: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("blob: close: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(dstPath)
		return "", err
	}
	return s.baseURL + "/api/files/" + file, nil
}

// Open returns a reader over the decompressed file.
func (s *DiskStore) Open(name string) (io.ReadCloser, error) {
	name = filepath.Base(name)
	f, err := os.Open(filepath.Join(s.dir, name+".gz"))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

// Serve writes the named file with a content type derived from its extension.
func (s *DiskStore) Serve(w http.ResponseWriter, name string) error {
	rc, err := s.Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	w.Header().Set("Content-Type", contentTypeByExt(filepath.Ext(name)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Errorf("blob: serve %s: %v", name, err)
	}
	return nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}
