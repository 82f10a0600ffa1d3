package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxLoggerKey = "logger"
	ctxAdminKey  = "admin"
)

// requestLogger tags every request with an id and logs its outcome.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		entry := h.log.WithField("request_id", requestID)
		c.Set(ctxLoggerKey, entry)

		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if admin, ok := c.Get(ctxAdminKey); ok {
			fields["admin"] = admin
		}
		if c.Writer.Status() >= 500 {
			entry.WithFields(fields).Warn("request completed")
			return
		}
		entry.WithFields(fields).Info("request completed")
	}
}

func loggerFor(c *gin.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if v, ok := c.Get(ctxLoggerKey); ok {
		if entry, ok := v.(logrus.FieldLogger); ok {
			return entry
		}
	}
	return fallback
}

// requireAdmin rejects requests without a valid admin bearer token.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Full authentication is required to access this resource")
			return
		}

		admin, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.writeError(c, err)
			return
		}

		c.Set(ctxAdminKey, admin.Username)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
