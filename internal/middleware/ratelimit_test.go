package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := RedisRateLimit(client, time.Minute, 2, zaptest.NewLogger(t))(okHandler)
	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/entries", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}
	if ttl := mr.TTL(RateLimitKeyPrefix + "198.51.100.9"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("window TTL = %v, want (0, 1m]", ttl)
	}

	// A new window starts once the key expires.
	mr.FastForward(time.Minute + time.Second)
	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("after window: status = %d, want 200", rec.Code)
	}
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	h := RedisRateLimit(client, time.Minute, 1, zaptest.NewLogger(t))(okHandler)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/entries", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d with Redis down: status = %d, want 200", i+1, rec.Code)
		}
	}
}
