package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResetWindow = time.Minute

// ResetThrottle rate-limits password-reset requests per address, backed by
// Redis. Key format: reset-throttle:<email>
type ResetThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewResetThrottle creates a ResetThrottle wrapping the given Redis client.
// A non-positive window falls back to the default.
func NewResetThrottle(client *redis.Client, window time.Duration) *ResetThrottle {
	if window <= 0 {
		window = defaultResetWindow
	}
	return &ResetThrottle{client: client, window: window}
}

// Allow reports whether a reset request for email may proceed. The first
// request in a window claims the key atomically; followers are denied until
// it expires.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.window).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}

func (t *ResetThrottle) key(email string) string {
	return fmt.Sprintf("reset-throttle:%s", email)
}
