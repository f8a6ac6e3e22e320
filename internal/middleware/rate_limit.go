package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"github.com/Payphone-Digital/authflow/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit throttles by client IP. When the limiter backend fails the
// request is let through; an outage of Redis must not lock users out.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		res, err := limiter.Allow(ctx, ip, time.Now())
		if err != nil {
			logger.WarnWithContext(ctx, "Rate limiter unavailable, allowing request").
				Err(err).
				Log()
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header(constants.HeaderRetryAfter, strconv.Itoa(retry))
			metrics.RateLimited.Inc()

			logger.WarnWithContext(ctx, "Rate limit exceeded").
				String("path", c.Request.URL.Path).
				Int("max_requests", res.Limit).
				Int("retry_after_seconds", retry).
				Log()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, constants.BuildErrorResponse(constants.MsgTooManyRequests, nil))
			return
		}

		c.Next()
	}
}
