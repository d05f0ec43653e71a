package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/travel-journal-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix is the Redis key prefix for the window counters.
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit counts requests per client IP in fixed windows shared by
// every instance using the same Redis. When Redis fails the request is
// let through.
func RedisRateLimit(client *redis.Client, window time.Duration, maxRequests int, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKeyPrefix + clientip.RealClientIP(r)

			count, err := client.Incr(ctx, key).Result()
			if err == nil && count == 1 {
				err = client.Expire(ctx, key, window).Err()
			}
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(maxRequests) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(maxRequests) {
				retryAfter := window
				if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retryAfter = ttl
				}
				secs := int(retryAfter.Round(time.Second).Seconds())
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"error":"Rate limit exceeded. Please try again later.","retry_after":%d}`, secs)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
