package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope. The log entry
// carries the request ID, route template and caller so it can be matched to
// the access log line and the client's report.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			fields := []zap.Field{
				zap.Any("panic", recovered),
				zap.String("request_id", RequestIDFrom(c)),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			}
			if actor := ActorFrom(c); actor.Authenticated() {
				fields = append(fields, zap.String("user_id", actor.ID), zap.String("role", string(actor.Role)))
			}
			logger.Error("Handler panicked", fields...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			abort(c, http.StatusInternalServerError, "Internal server error", "")
		}()
		c.Next()
	}
}
