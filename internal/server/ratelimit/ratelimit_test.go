package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(rules ...Rule) (*Limiter, *time.Time) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{Enabled: true, Rules: rules})
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(Rule{Method: "GET", Path: "/export.pdf", Limit: 6, Window: time.Minute, Burst: 2})

	assert.True(t, l.Allow("1.2.3.4", "GET", "/export.pdf").Allowed)
	assert.True(t, l.Allow("1.2.3.4", "GET", "/export.pdf").Allowed)

	info := l.Allow("1.2.3.4", "GET", "/export.pdf")
	assert.False(t, info.Allowed)
	assert.Equal(t, 6, info.Limit)
	assert.Equal(t, 10*time.Second, info.RetryAfter)

	// other clients have their own bucket
	assert.True(t, l.Allow("5.6.7.8", "GET", "/export.pdf").Allowed)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(Rule{Method: "GET", Path: "/export.pdf", Limit: 6, Window: time.Minute, Burst: 1})

	assert.True(t, l.Allow("c", "GET", "/export.pdf").Allowed)
	assert.False(t, l.Allow("c", "GET", "/export.pdf").Allowed)

	*clock = clock.Add(10 * time.Second)
	assert.True(t, l.Allow("c", "GET", "/export.pdf").Allowed)
}

func TestLimiter_UnmatchedAndPrefixRules(t *testing.T) {
	l, _ := newTestLimiter(Rule{Method: "POST", Path: "/api/selection/", Limit: 1, Window: time.Minute, Burst: 1})

	assert.True(t, l.Allow("c", "GET", "/").Allowed)
	assert.True(t, l.Allow("c", "GET", "/").Allowed)

	assert.True(t, l.Allow("c", "POST", "/api/selection/theme").Allowed)
	assert.False(t, l.Allow("c", "POST", "/api/selection/theme").Allowed)
}

func TestLimiter_DisabledAndExempt(t *testing.T) {
	rule := Rule{Method: "GET", Path: "/x", Limit: 1, Window: time.Minute, Burst: 1}

	off := NewLimiter(Config{Enabled: false, Rules: []Rule{rule}})
	for i := 0; i < 5; i++ {
		assert.True(t, off.Allow("c", "GET", "/x").Allowed)
	}

	exempt := NewLimiter(Config{Enabled: true, Exempt: map[string]bool{"127.0.0.1": true}, Rules: []Rule{rule}})
	for i := 0; i < 5; i++ {
		assert.True(t, exempt.Allow("127.0.0.1", "GET", "/x").Allowed)
	}
}

func TestLimiter_Prune(t *testing.T) {
	l, clock := newTestLimiter(Rule{Method: "GET", Path: "/x", Limit: 1, Window: time.Minute})
	l.Allow("a", "GET", "/x")
	*clock = clock.Add(2 * time.Hour)
	l.Allow("b", "GET", "/x")

	assert.Equal(t, 1, l.Prune(clock.Add(-time.Hour)))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_EXEMPT", "127.0.0.1, ::1")
	t.Setenv("RATE_LIMIT_EXPORT_PER_MINUTE", "30")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.Exempt["::1"])
	assert.Equal(t, 30, cfg.Rules[0].Limit)
}
