package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bizchat/internal/storage"
)

type item struct {
	val string
	exp time.Time
}

// Client is an in-process CodeStore for -dev runs and tests.
type Client struct {
	mu      sync.Mutex
	codeTTL time.Duration
	now     func() time.Time
	codes   map[string]item
	limit   map[string][]time.Time
}

var _ storage.CodeStore = (*Client)(nil)

func New(codeTTL time.Duration) *Client {
	return &Client{
		codeTTL: codeTTL,
		now:     time.Now,
		codes:   make(map[string]item),
		limit:   make(map[string][]time.Time),
	}
}

func (c *Client) Close() error { return nil }

func (c *Client) SetCode(ctx context.Context, phone, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[phone] = item{val: code, exp: c.now().Add(c.codeTTL)}
	return nil
}

func (c *Client) GetCode(ctx context.Context, phone string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.codes[phone]
	if !ok || c.now().After(v.exp) {
		return "", nil
	}
	return v.val, nil
}

func (c *Client) DeleteCode(ctx context.Context, phone string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, phone)
	return nil
}

func (c *Client) CheckRateLimit(ctx context.Context, phone string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	cut := now.Add(-storage.CodeRateLimitWindowSeconds * time.Second)
	kept := c.limit[phone][:0]
	for _, t := range c.limit[phone] {
		if t.After(cut) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= storage.CodeRateLimitMax {
		c.limit[phone] = kept
		return false, nil
	}
	c.limit[phone] = append(kept, now)
	return true, nil
}
