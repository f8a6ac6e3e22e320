package middleware

import (
	"strconv"
	"time"

	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency labelled by route template, so
// /auth/email/verify/:id/:hash stays one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestCount.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
