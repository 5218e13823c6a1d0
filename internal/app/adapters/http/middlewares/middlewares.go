package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"streamboard/internal/app/adapters/metrics"
	"streamboard/internal/app/infrastructure/storage"
)

type Middlewares struct {
	rps      float64
	burst    int
	limiters *storage.Cache[*rate.Limiter]
}

func New(rps float64, burst int) *Middlewares {
	return &Middlewares{
		rps:      rps,
		burst:    burst,
		limiters: storage.NewCache[*rate.Limiter](1024, 10*time.Minute, false, false, "", 0),
	}
}

// RateLimit enforces a per-client token bucket on the /api surface.
func (m *Middlewares) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.rps <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		limiter, ok := m.limiters.Get(ip)
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(m.rps), m.burst)
			m.limiters.Set(ip, limiter)
		}

		if !limiter.Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

// CountRequests records per-route request totals for /metrics.
func (m *Middlewares) CountRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.APIRequests.With(prometheus.Labels{
			"route":  c.FullPath(),
			"status": strconv.Itoa(c.Writer.Status()),
		}).Inc()
	}
}
