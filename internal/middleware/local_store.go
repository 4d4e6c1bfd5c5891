package middleware

import (
    "context"
    "math"
    "sync"
    "time"

    "golang.org/x/time/rate"

    "github.com/iliyamo/grave-assignment/internal/config"
)

// LocalStore keeps one token bucket per key in process memory.  It backs
// the rate limiter when Redis is not configured.  Idle keys are evicted by
// the janitor.
type LocalStore struct {
    mu      sync.Mutex
    entries map[string]*localEntry
    limit   rate.Limit
    burst   int
    idleTTL time.Duration
    now     func() time.Time
}

type localEntry struct {
    lim      *rate.Limiter
    lastSeen time.Time
}

// NewLocalStore builds a store with the bucket shape of cfg.
func NewLocalStore(cfg config.RateLimitConfig) *LocalStore {
    return &LocalStore{
        entries: make(map[string]*localEntry),
        limit:   rate.Limit(cfg.RefillRate()),
        burst:   cfg.Capacity,
        idleTTL: cfg.TTL,
        now:     time.Now,
    }
}

// Take consumes one token for key.  When no token is left it reports how
// long until the next one.
func (s *LocalStore) Take(key string) (allowed bool, remaining int64, retry time.Duration) {
    now := s.now()

    s.mu.Lock()
    ent, ok := s.entries[key]
    if !ok {
        ent = &localEntry{lim: rate.NewLimiter(s.limit, s.burst)}
        s.entries[key] = ent
    }
    ent.lastSeen = now
    s.mu.Unlock()

    r := ent.lim.ReserveN(now, 1)
    if !r.OK() {
        return false, 0, time.Second
    }
    if d := r.DelayFrom(now); d > 0 {
        r.CancelAt(now)
        return false, 0, d
    }
    return true, int64(math.Floor(ent.lim.TokensAt(now))), 0
}

// Len reports the number of tracked keys.
func (s *LocalStore) Len() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.entries)
}

// Cleanup evicts keys idle for longer than the store's TTL.
func (s *LocalStore) Cleanup() {
    cutoff := s.now().Add(-s.idleTTL)

    s.mu.Lock()
    defer s.mu.Unlock()
    for k, ent := range s.entries {
        if ent.lastSeen.Before(cutoff) {
            delete(s.entries, k)
        }
    }
}

// StartJanitor runs Cleanup every interval until ctx is cancelled.
func (s *LocalStore) StartJanitor(ctx context.Context, every time.Duration) {
    if every <= 0 {
        return
    }
    t := time.NewTicker(every)
    go func() {
        defer t.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-t.C:
                s.Cleanup()
            }
        }
    }()
}
