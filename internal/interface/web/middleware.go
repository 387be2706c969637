package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LoggerMiddleware tags every request with an id and logs method, path,
// status and latency once the handler chain finished.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("requestId", requestID)
		c.Header("X-Request-Id", requestID)

		c.Next()

		entry := log.WithFields(log.Fields{
			"requestId": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last().Err).Warn("request failed")
			return
		}
		entry.Debug("request handled")
	}
}

// SentryMiddleware captures errors that happened during request handling
// and reports them to Sentry
func SentryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("method", c.Request.Method)
					scope.SetTag("path", c.Request.URL.Path)
					scope.SetTag("status", http.StatusText(c.Writer.Status()))
					scope.SetTag("ip", c.ClientIP())
					scope.SetTag("user-agent", c.Request.UserAgent())
					scope.SetExtra("latency", time.Since(start).String())
					scope.SetRequest(c.Request)

					sentry.CaptureException(err.Err)
				})
			}
		}
	}
}

// ErrorMiddleware renders the first handler error as the backend's
// {status, message, errors} body. Auth failures additionally tell the
// UI where to route.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *domain.APIError
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "unauthenticated",
				"message": "session expired",
				"route":   "/login",
			})
		case errors.Is(err, application.ErrNoMerchantSelected):
			c.JSON(http.StatusConflict, gin.H{
				"status":  "no_merchant_selected",
				"message": "select a merchant first",
				"route":   "/merchants",
			})
		case errors.As(err, &apiErr):
			code := apiErr.HTTPCode
			if code == 0 {
				code = http.StatusBadRequest
			}
			c.JSON(code, gin.H{
				"status":      apiErr.Status,
				"message":     apiErr.Message,
				"errors":      apiErr.Errors,
				"description": apiErr.Description(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "internal_error",
				"message": err.Error(),
			})
		}
	}
}
