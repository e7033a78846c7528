// Package ratelimit throttles expensive endpoints with per-client token buckets.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// bucket is a token bucket: capacity tokens, refilled continuously.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	perSecond  float64
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newBucket(capacity int, perSecond float64, now time.Time) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		perSecond:  perSecond,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

func (b *bucket) refill(now time.Time) {
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*b.perSecond)
	b.lastRefill = now
}

// take consumes a token if one is available and reports the bucket state.
func (b *bucket) take(now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	b.lastUsed = now
	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := (1 - b.tokens) / b.perSecond
	return false, 0, time.Duration(wait * float64(time.Second))
}

// Rule limits one method and path. A Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int
	Window time.Duration
	Burst  int
}

func (r Rule) matches(method, path string) bool {
	if r.Method != method {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(path, r.Path)
	}
	return r.Path == path
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter applies Rules per client. Requests matching no rule are allowed.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter creates a Limiter.
func NewLimiter(cfg Config) *Limiter {
	return &Limiter{cfg: cfg, now: time.Now, buckets: make(map[string]*bucket)}
}

// Allow consumes a token for clientID on method+path.
func (l *Limiter) Allow(clientID, method, path string) Info {
	if !l.cfg.Enabled || l.cfg.Exempt[clientID] {
		return Info{Allowed: true}
	}

	var rule *Rule
	for i := range l.cfg.Rules {
		if l.cfg.Rules[i].matches(method, path) {
			rule = &l.cfg.Rules[i]
			break
		}
	}
	if rule == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return Info{Allowed: true}
	}

	now := l.now()
	key := clientID + " " + rule.Method + " " + rule.Path

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		burst := rule.Burst
		if burst <= 0 {
			burst = rule.Limit
		}
		b = newBucket(burst, float64(rule.Limit)/rule.Window.Seconds(), now)
		l.buckets[key] = b
	}
	l.mu.Unlock()

	allowed, remaining, retry := b.take(now)
	return Info{Allowed: allowed, Limit: rule.Limit, Remaining: remaining, RetryAfter: retry}
}

// Prune drops buckets unused since before cutoff.
func (l *Limiter) Prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, b := range l.buckets {
		b.mu.Lock()
		stale := b.lastUsed.Before(cutoff)
		b.mu.Unlock()
		if stale {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}
