package server

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// withRequestID tags the request with an ID, reusing a well-formed incoming one,
// and stores a logger carrying it in the gin context.
func (s *Server) withRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID.MatchString(id) {
			var err error
			if id, err = gonanoid.New(); err != nil {
				id = fmt.Sprintf("t%d", time.Now().UnixNano())
			}
		}
		c.Header(requestIDHeader, id)
		c.Set(loggerKey, s.log.WithField("request_id", id))
		c.Next()
	}
}

func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := requestLogger(c).WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     sanitizeLogString(c.Request.URL.Path),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   clientIP(c.Request),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

func (s *Server) recovered(c *gin.Context, rec any) {
	requestLogger(c).WithField("panic", fmt.Sprint(rec)).Error("panic recovered")
	writeErr(c, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func (s *Server) withConcurrencyLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.requestSem.Acquire(c.Request.Context(), 1); err != nil {
			writeErr(c, http.StatusServiceUnavailable, "capacity", "Service at capacity")
			return
		}
		defer s.requestSem.Release(1)

		s.active.Add(1)
		s.total.Add(1)
		defer s.active.Add(-1)

		c.Next()
	}
}

func (s *Server) withRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := s.rateLimiter(clientIP(c.Request))
		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			writeErr(c, http.StatusTooManyRequests, "rate_limit", "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

// clientLimiter is the rate limiter of one client IP and when it was last used
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

func (s *Server) rateLimiter(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := s.limiters.Load(ip); ok {
		cl := v.(*clientLimiter)
		cl.lastSeen.Store(now)
		return cl.limiter
	}
	cl := &clientLimiter{limiter: rate.NewLimiter(rate.Every(s.cfg.RateLimitEvery), s.cfg.RateLimitBurst)}
	cl.lastSeen.Store(now)
	v, _ := s.limiters.LoadOrStore(ip, cl)
	actual := v.(*clientLimiter)
	actual.lastSeen.Store(now)
	return actual.limiter
}

// pruneRateLimiters drops the limiters of clients not seen since idleSince
func (s *Server) pruneRateLimiters(idleSince time.Time) int {
	cutoff := idleSince.UnixNano()
	pruned := 0
	s.limiters.Range(func(key, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			s.limiters.Delete(key)
			pruned++
		}
		return true
	})
	return pruned
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(loggerKey); ok {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return logrus.StandardLogger()
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.Index(ip, ","); idx > 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func sanitizeLogString(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
