package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/board-server/internal/auth"
)

const (
	// ContextKeyRequestID is the context key for storing the request id.
	ContextKeyRequestID = "request_id"
	// ContextKeyAdmin holds the authenticated admin username once the admin gate has passed.
	ContextKeyAdmin = "admin"

	headerRequestID = "X-Request-ID"
	adminRealm      = `Basic realm="Admin"`
)

// contentSecurityPolicy only allows same-origin resources, plus inline styles
// for the message colour and font.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data:",
	"connect-src 'self'",
	"base-uri 'self'",
	"form-action 'self'",
	"frame-ancestors 'none'",
	"object-src 'none'",
}, "; ")

// RequestIDMiddleware tags every request with an id, reusing one supplied by a proxy.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Log after request
		evt := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = logger.Warn()
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString(ContextKeyRequestID)).
			Msg("http request")
	}
}

// SecurityHeadersMiddleware sets a restrictive CSP and the usual hardening headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		c.Next()
	}
}

// CORSMiddleware allows cross-origin calls from the listed origins only.
// With no origins configured nothing is added and browsers fall back to same-origin.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; origin == "" || !ok {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// BodyLimitMiddleware caps request bodies at limit bytes.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// AdminAuthMiddleware guards admin routes with HTTP basic auth against the shared admin credential.
func AdminAuthMiddleware(admin *auth.Admin, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !admin.Verify(user, pass) {
			logger.Debug().
				Bool("credentials_present", ok).
				Str("path", c.Request.URL.Path).
				Msg("admin authentication failed")
			c.Header("WWW-Authenticate", adminRealm)
			c.String(http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		c.Set(ContextKeyAdmin, admin.Username())
		c.Next()
	}
}

// adminFromContext returns the admin username stored by AdminAuthMiddleware.
func adminFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyAdmin)
}
