package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 5 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out one token bucket per client key.
// perMinute tokens refill evenly over a minute with a burst of perMinute.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	perMinute int
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &rateLimiter{
		clients:   make(map[string]*clientLimiter),
		perMinute: perMinute,
		now:       time.Now,
	}
}

func (r *rateLimiter) allow(key string) bool {
	if r == nil {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	cl, ok := r.clients[key]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.perMinute)), r.perMinute),
		}
		r.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep drops idle clients at most once per minute; callers hold r.mu.
func (r *rateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < time.Minute {
		return
	}
	r.lastSweep = now
	for key, cl := range r.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(r.clients, key)
		}
	}
}

// RateLimitMiddleware rejects clients that exceed the limiter with 429.
func RateLimitMiddleware(rl *rateLimiter, m *metrics, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}

		c.Header("RateLimit-Policy", strconv.Itoa(rl.perMinute)+";w=60")
		if !rl.allow(c.ClientIP()) {
			m.rateLimited.Inc()
			logger.Debug().Str("client_ip", c.ClientIP()).Msg("rate limit exceeded")
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests, please try again later."})
			return
		}
		c.Next()
	}
}
