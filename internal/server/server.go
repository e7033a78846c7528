// Package server serves the résumé site: static assets, pages rendered per
// request, selection updates and PDF export.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/server/ratelimit"
	"github.com/jonathan/resume-site/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	cfg         Config
	source      fetch.Source
	bus         *events.Bus
	rateLimiter *ratelimit.Limiter
	handler     http.Handler
	httpServer  *http.Server
}

// Config holds server configuration
type Config struct {
	Port    int
	SiteDir string
	// Store persists selections across requests. Defaults to an in-memory store.
	Store         storage.Store
	DefaultResume string
	Sanitize      bool
	Shell         string
	// Printer backs GET /export.pdf. Export answers 501 when nil.
	Printer  export.Printer
	Watchdog time.Duration
	Verbose  bool
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.SiteDir == "" {
		return nil, errors.New("site directory is required")
	}
	info, err := os.Stat(cfg.SiteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open site directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site directory %s is not a directory", cfg.SiteDir)
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewMemory(nil)
	}

	rl := ratelimit.LoadConfig()
	if cfg.RateLimit != nil {
		rl = *cfg.RateLimit
	}

	s := &Server{
		cfg:         cfg,
		source:      fetch.NewDirSource(cfg.SiteDir),
		bus:         events.NewBus(),
		rateLimiter: ratelimit.NewLimiter(rl),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/selection", s.handleGetSelection)
	mux.HandleFunc("POST /api/selection/resume", s.handleSelectResume)
	mux.HandleFunc("POST /api/selection/theme", s.handleSelectTheme)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /export.pdf", s.handleExport)

	static := http.FileServer(http.Dir(cfg.SiteDir))
	for _, prefix := range []string{"/data/", "/css/", "/resources/", "/.private/"} {
		mux.Handle("GET "+prefix, static)
	}

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // PDF export starts a browser
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	pruneDone := make(chan struct{})
	go s.pruneRateLimits(pruneDone)

	go func() {
		log.Printf("Server starting on %s (site %s)", s.httpServer.Addr, s.cfg.SiteDir)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")
	close(pruneDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func (s *Server) pruneRateLimits(done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if n := s.rateLimiter.Prune(now.Add(-10 * time.Minute)); n > 0 && s.cfg.Verbose {
				log.Printf("[rate-limit] pruned %d idle buckets", n)
			}
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.rateLimiter.Allow(s.extractClientID(r), r.Method, r.URL.Path)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !info.Allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	retry := int(info.RetryAfter.Round(time.Second).Seconds())
	if retry < 1 {
		retry = 1
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d RetryAfter=%ds", info.Limit, retry)

	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"message":     "Rate limit exceeded. Please try again later.",
		"limit":       info.Limit,
		"retry_after": retry,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
