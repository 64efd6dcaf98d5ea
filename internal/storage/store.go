package storage

import "context"

// Rate limit for code requests: at most CodeRateLimitMax per CodeRateLimitWindowSeconds per phone.
const (
	CodeRateLimitWindowSeconds = 600
	CodeRateLimitMax           = 10
)

// CodeStore keeps one-time login codes keyed by phone and throttles code requests.
// Implementations: redis.Client, memory.Client (for -dev without Redis).
type CodeStore interface {
	SetCode(ctx context.Context, phone, code string) error
	// GetCode returns "" when no live code exists.
	GetCode(ctx context.Context, phone string) (string, error)
	DeleteCode(ctx context.Context, phone string) error
	CheckRateLimit(ctx context.Context, phone string) (allowed bool, err error)
	Close() error
}
