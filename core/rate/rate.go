// Package rate limits how often a key, such as a subscription owner, may act.
package rate

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidLimit = errors.New("rate: limit and window must be positive")

// Limiter admits at most a fixed number of events per key within a sliding window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

func validate(window time.Duration, limit int) error {
	if window <= 0 || limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
