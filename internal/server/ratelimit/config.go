package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	Exempt  map[string]bool
	Rules   []Rule
}

// DefaultRules limits PDF export, which starts a browser per request, and
// selection writes.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "GET", Path: "/export.pdf", Limit: 6, Window: time.Minute, Burst: 2},
		{Method: "POST", Path: "/api/selection/", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// LoadConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_EXEMPT (comma-separated
// client addresses) and RATE_LIMIT_EXPORT_PER_MINUTE.
func LoadConfig() Config {
	cfg := Config{
		Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		Exempt:  parseList(os.Getenv("RATE_LIMIT_EXEMPT")),
		Rules:   DefaultRules(),
	}
	if n := getEnvInt("RATE_LIMIT_EXPORT_PER_MINUTE", 0); n > 0 {
		cfg.Rules[0].Limit = n
	}
	return cfg
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}
