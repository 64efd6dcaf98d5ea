package startup

import (
	"context"
	"os"
	"time"

	"github.com/bizchat/internal/logger"
	redisstorage "github.com/bizchat/internal/storage/redis"
)

// ConnectRedisWithRetry connects to Redis with backoff; exits after maxWait.
func ConnectRedisWithRetry(redisURL string, codeTTL time.Duration, maxWait time.Duration, logPrefix string) *redisstorage.Client {
	deadline := time.Now().Add(maxWait)
	backoff := 2 * time.Second
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := redisstorage.New(ctx, redisURL, codeTTL)
		cancel()
		if err == nil {
			return client
		}
		if time.Now().After(deadline) {
			logger.Errorf("%sredis (gave up after %v): %v", logPrefix, maxWait, err)
			os.Exit(1)
		}
		logger.Errorf("%sredis connect failed, retry in %v: %v", logPrefix, backoff, err)
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
