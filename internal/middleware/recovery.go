package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/response"
)

// Recovery turns panics into plain 500 envelopes; the stack goes to the log,
// never to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"request_id", GetRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				response.FailWith(c, apperror.KindInternal, "internal error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
