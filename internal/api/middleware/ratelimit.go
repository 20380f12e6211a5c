package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
)

// retryAfter is advertised to throttled clients.
const retryAfter = time.Minute

// keyedLimiter holds one token bucket per client key.
type keyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func newKeyedLimiter(every rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   every,
		burst:   burst,
	}
}

// bucket returns the limiter for key, creating it on first use.
func (k *keyedLimiter) bucket(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = rate.NewLimiter(k.every, k.burst)
		k.buckets[key] = b
	}
	return b
}

// RateLimiter throttles a route per client IP. The bridge only serves
// loopback clients, so the bucket map stays tiny; it slows down guessing of
// the settings secret.
func RateLimiter(requestsPerSecond float64, burst int, logger *slog.Logger) echo.MiddlewareFunc {
	limits := newKeyedLimiter(rate.Limit(requestsPerSecond), burst)
	wait := strconv.Itoa(int(retryAfter.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if limits.bucket(ip).Allow() {
				return next(c)
			}

			if logger != nil {
				logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", c.Path()))
			}
			c.Response().Header().Set("Retry-After", wait)
			return echo.NewHTTPError(http.StatusTooManyRequests, map[string]string{
				"error":       "rate limit exceeded",
				"code":        apperrors.CodeRateLimited,
				"retry_after": wait,
			})
		}
	}
}
