// Package blob stores uploaded bytes and returns a URL the clients can fetch them from.
package blob

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var (
	ErrBlockedType     = errors.New("file type not allowed")
	ErrContentMismatch = errors.New("file content does not match type")
	ErrNotFound        = errors.New("file not found")
)

// Only executables and scripts are refused.
var blockedExt = map[string]bool{
	".exe": true, ".sh": true, ".js": true, ".bat": true, ".cmd": true,
	".php": true, ".py": true, ".rb": true,
}

type Store interface {
	// Store saves data and returns its public URL.
	Store(ctx context.Context, data []byte, name, contentType string) (string, error)
}

// Check rejects blocked extensions and content whose magic bytes contradict the extension.
func Check(name string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(name))
	if blockedExt[ext] {
		return ErrBlockedType
	}
	if !matchMagic(ext, data) {
		return ErrContentMismatch
	}
	return nil
}

// ObjectKey builds a collision-free key under messenger/ that keeps the original extension.
func ObjectKey(name string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	return "messenger/" + now.UTC().Format("20060102_150405") + "_" + uuid.New().String() + ext
}

// SafeFilename strips path parts, control characters and quotes from a display name.
func SafeFilename(s string) string {
	s = strings.TrimSpace(filepath.Base(strings.ReplaceAll(s, `\`, "/")))
	if s == "" || s == "." || s == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\r', '\n', '"', '\\', '/', '\x00':
			continue
		}
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func matchMagic(ext string, head []byte) bool {
	switch ext {
	case ".jpg", ".jpeg":
		return len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF
	case ".png":
		return len(head) >= 8 && bytes.Equal(head[:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	case ".gif":
		return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
	case ".webp":
		return len(head) >= 12 && bytes.Equal(head[8:12], []byte("WEBP"))
	case ".pdf":
		return len(head) >= 5 && bytes.Equal(head[:5], []byte("%PDF-"))
	}
	return true
}

func contentTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
