package ui

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loanlens/domain/core"
	"loanlens/internal"
	"loanlens/internal/errors"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// requestID reuses an incoming X-Request-ID or assigns a new time-ordered id
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = core.NewID().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one structured line per request
func accessLog(logger *internal.Logger) gin.HandlerFunc {
	z := logger.Zap().Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String(requestIDKey, c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			z.Error("request", fields...)
		case status >= http.StatusBadRequest:
			z.Warn("request", fields...)
		default:
			z.Info("request", fields...)
		}
	}
}

// recovery turns a panic into the regular error response for the route
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := errors.InternalError(fmt.Sprintf("panic: %v", recovered))
		s.logger.With(zap.String(requestIDKey, c.GetString(requestIDKey))).Error("[UI] recovered %v", recovered)
		s.fail(c, err)
		c.Abort()
	})
}

// fail answers with JSON on API routes and the error page elsewhere
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if isAPI(c) {
		s.renderJSONError(c, err)
		return
	}
	s.renderError(c, err)
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
