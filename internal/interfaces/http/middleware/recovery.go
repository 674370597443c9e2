package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Recovery turns a handler panic into a masked 500 response.
func Recovery(logger logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", GetRequestID(c)),
					logging.String("panic", fmt.Sprint(r)),
					logging.String("stack", string(debug.Stack())))
				prometheus.RecordError(metrics, "http", string(errors.CodeInternal))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":   string(errors.CodeInternal),
					"detail": errors.DefaultMessageForCode(errors.CodeInternal),
				})
			}
		}()
		c.Next()
	}
}

// BodyLimit caps request bodies at limit bytes. Zero disables the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
