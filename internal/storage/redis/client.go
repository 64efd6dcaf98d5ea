package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bizchat/internal/storage"
)

type Client struct {
	cli     *redis.Client
	codeTTL time.Duration
}

var _ storage.CodeStore = (*Client)(nil)

func New(ctx context.Context, url string, codeTTL time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli, codeTTL: codeTTL}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

// SetCode stores the code under code:{phone}; a newer code replaces the old one.
func (c *Client) SetCode(ctx context.Context, phone, code string) error {
	return c.cli.Set(ctx, "code:"+phone, code, c.codeTTL).Err()
}

func (c *Client) GetCode(ctx context.Context, phone string) (string, error) {
	val, err := c.cli.Get(ctx, "code:"+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// DeleteCode makes a verified code single-use.
func (c *Client) DeleteCode(ctx context.Context, phone string) error {
	return c.cli.Del(ctx, "code:"+phone).Err()
}

// CheckRateLimit counts requests in code_limit:{phone} over a fixed window.
func (c *Client) CheckRateLimit(ctx context.Context, phone string) (bool, error) {
	key := "code_limit:" + phone
	n, err := c.cli.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.cli.Expire(ctx, key, storage.CodeRateLimitWindowSeconds*time.Second).Err(); err != nil {
			return false, err
		}
	}
	return n <= storage.CodeRateLimitMax, nil
}
