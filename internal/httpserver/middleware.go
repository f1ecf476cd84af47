package httpserver

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/metrics"
	"valentine-storefront/internal/session"
)

const (
	sessionKey     = "session"
	adminKeyHeader = "X-Admin-Key"
)

// accessLog writes one line per request through zerolog.
func accessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		if status >= http.StatusInternalServerError {
			ev = logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// withSession resolves the bearer token. Requests without a usable token
// continue as guests.
func withSession(auth AuthService, logger zerolog.Logger) gin.HandlerFunc {
	var resolver session.Resolver
	if auth != nil {
		resolver = auth
	}
	return func(c *gin.Context) {
		sess, err := session.Resolve(c.Request.Context(), resolver, bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			logger.Debug().Err(err).Msg("bearer token rejected, continuing as guest")
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionFrom(c).SignedIn() {
			abortWithError(c, domain.ErrAuthRequired)
			return
		}
		c.Next()
	}
}

// requireAdminKey guards staff routes. An empty key disables them.
func requireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(adminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "forbidden", Message: "Staff access only."})
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.Guest()
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
