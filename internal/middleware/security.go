package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/travel-journal-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerReferrerPolicy          = "Referrer-Policy"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
// Photos are hot-linked from arbitrary hosts, so img-src is open.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerReferrerPolicy, "strict-origin-when-cross-origin")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'; img-src 'self' https: data:")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost.
// allowedHost should be the bare hostname without scheme or port; empty disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterSet keeps one token bucket per client IP and forgets idle ones.
type limiterSet struct {
	limit rate.Limit
	burst int

	mu         sync.Mutex
	entries    map[string]*limiterEntry
	cleanupRun bool
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limit:   limit,
		burst:   burst,
		entries: make(map[string]*limiterEntry),
	}
}

func (s *limiterSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startCleanupOnce()
	e, ok := s.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (s *limiterSet) startCleanupOnce() {
	if s.cleanupRun {
		return
	}
	s.cleanupRun = true
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			s.sweep(time.Now())
		}
	}()
}

func (s *limiterSet) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ip, e := range s.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(s.entries, ip)
		}
	}
}

// RateLimit limits each client IP to rps requests per second with the
// given burst. Returns 429 when exceeded.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	set := newLimiterSet(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.get(clientip.RealClientIP(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests. Please slow down."}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
	}
}
