package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL drops a client's limiter after it has been quiet this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		IdleTTL:           10 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors holds one limiter per client IP.
type visitors struct {
	mu        sync.Mutex
	byKey     map[string]*visitor
	cfg       RateLimitConfig
	lastSweep time.Time
}

func newVisitors(cfg RateLimitConfig, now time.Time) *visitors {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &visitors{
		byKey:     make(map[string]*visitor),
		cfg:       cfg,
		lastSweep: now,
	}
}

func (v *visitors) get(key string, now time.Time) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	if now.Sub(v.lastSweep) >= v.cfg.IdleTTL {
		for k, vis := range v.byKey {
			if now.Sub(vis.lastSeen) >= v.cfg.IdleTTL {
				delete(v.byKey, k)
			}
		}
		v.lastSweep = now
	}

	vis, ok := v.byKey[key]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(rate.Limit(v.cfg.RequestsPerSecond), v.cfg.BurstSize)}
		v.byKey[key] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byKey)
}

// retryAfter is the whole number of seconds until lim has a token again.
func retryAfter(lim *rate.Limiter, now time.Time) int {
	rps := float64(lim.Limit())
	if rps <= 0 {
		return 1
	}
	secs := int(math.Ceil((1 - lim.TokensAt(now)) / rps))
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimit limits each client IP to cfg.RequestsPerSecond with bursts of
// cfg.BurstSize. Rejected requests get a 429 JSON error with Retry-After.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(cfg, time.Now)
}

func rateLimit(cfg RateLimitConfig, now func() time.Time) echo.MiddlewareFunc {
	store := newVisitors(cfg, now())
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t := now()
			lim := store.get(c.RealIP(), t)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			if !lim.AllowN(t, 1) {
				h.Set("Retry-After", strconv.Itoa(retryAfter(lim, t)))
				h.Set("X-RateLimit-Remaining", "0")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
