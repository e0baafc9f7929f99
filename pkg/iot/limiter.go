package iot

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long a client's limiter is kept without requests. An idle client's
// bucket has refilled by then, so dropping it changes nothing for that client.
const DefaultLimiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// pinned limiters come from SetLimiter and are never evicted
	pinned bool
}

// RateLimiterStore manages per-client rate limiters: client key -> rate limiter. Limiters of
// clients idle for longer than IdleTTL are dropped, so the map stays bounded by the number of
// recently active clients.
type RateLimiterStore struct {
	limiters     map[string]*clientLimiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int

	// IdleTTL of zero disables eviction
	IdleTTL time.Duration
	// Now is the clock, time.Now when nil
	Now func() time.Time

	lastSweep time.Time
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[string]*clientLimiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
		IdleTTL:      DefaultLimiterIdleTTL,
	}
}

// ClientKey reduces a remote address to the host, so every connection of one client shares a
// bucket. Addresses without a port are used as they are.
func ClientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	if remoteAddr == "" {
		return "unknown"
	}
	return remoteAddr
}

func (s *RateLimiterStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RateLimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.IdleTTL > 0 && now.Sub(s.lastSweep) >= s.IdleTTL {
		s.sweepLocked(now)
	}

	entry, exists := s.limiters[key]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(s.defaultRate, s.defaultBurst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// SetLimiter overrides the limit of one client, e.g. a trusted dashboard host. Overrides are kept
// until the process exits.
func (s *RateLimiterStore) SetLimiter(key string, limit rate.Limit, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[key] = &clientLimiter{
		limiter:  rate.NewLimiter(limit, burst),
		lastSeen: s.now(),
		pinned:   true,
	}
}

func (s *RateLimiterStore) Allow(key string) bool {
	return s.GetLimiter(key).Allow()
}

// Prune drops idle limiters now and returns how many were removed.
func (s *RateLimiterStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IdleTTL <= 0 {
		return 0
	}
	return s.sweepLocked(s.now())
}

func (s *RateLimiterStore) sweepLocked(now time.Time) int {
	s.lastSweep = now
	removed := 0
	for key, entry := range s.limiters {
		if !entry.pinned && now.Sub(entry.lastSeen) > s.IdleTTL {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

func (s *RateLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
