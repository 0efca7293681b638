package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out page navigations so the site is hit at most once per
// interval. A zero interval disables it.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a Throttle allowing one navigation every intervalMs.
func NewThrottle(intervalMs int) *Throttle {
	if intervalMs <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	every := rate.Every(time.Duration(intervalMs) * time.Millisecond)
	return &Throttle{limiter: rate.NewLimiter(every, 1)}
}

// Wait blocks until the next navigation is allowed.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// URLSet is a set of discovered URLs. Snapshot order is insertion order,
// which callers must not rely on.
type URLSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	s.order = append(s.order, url)
	return true
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Snapshot returns a copy of the set as a slice.
func (s *URLSet) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
