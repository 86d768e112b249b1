package rate

import (
	"context"
	"sync"
	"time"
)

// LocalLimiter is the in-process sliding window used when no shared store is
// configured. Counts are per process.
type LocalLimiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	events map[string][]time.Time
	now    func() time.Time
}

func NewLocalLimiter(window time.Duration, limit int) (*LocalLimiter, error) {
	if err := validate(window, limit); err != nil {
		return nil, err
	}
	return &LocalLimiter{
		window: window,
		limit:  limit,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}, nil
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	events := l.events[key]
	i := 0
	for i < len(events) && !events[i].After(cutoff) {
		i++
	}
	events = events[i:]

	if len(events) >= l.limit {
		l.events[key] = events
		return false, nil
	}
	if len(events) == 0 {
		// drop idle keys so the map does not grow with every owner ever seen
		l.sweep(cutoff)
	}
	l.events[key] = append(events, now)
	return true, nil
}

func (l *LocalLimiter) sweep(cutoff time.Time) {
	for key, events := range l.events {
		if len(events) == 0 || !events[len(events)-1].After(cutoff) {
			delete(l.events, key)
		}
	}
}
