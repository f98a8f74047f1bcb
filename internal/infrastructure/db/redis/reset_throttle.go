package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// throttleWindow is the minimum interval between password reset emails for
// the same address.
const throttleWindow = 15 * time.Minute

// ResetThrottle rate-limits password reset requests per email address using
// a SetNX marker key. The first request in a window wins; later requests are
// rejected until the key expires.
type ResetThrottle struct {
	client *redis.Client
}

func NewResetThrottle(client *redis.Client) *ResetThrottle {
	return &ResetThrottle{client: client}
}

// Allow reports whether a reset email may be sent to the address now. The
// marker is set atomically, so concurrent requests agree on a single winner.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	key := "pwreset:" + strings.ToLower(email)

	ok, err := t.client.SetNX(ctx, key, time.Now().Unix(), throttleWindow).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}
