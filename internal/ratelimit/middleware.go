package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"

	apperrors "github.com/adawatch/drep-radar/internal/errors"
	"github.com/adawatch/drep-radar/internal/monitoring"
)

// Middleware enforces the per-IP limit on every request.
func Middleware(limiter *RateLimiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowIP(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Limiter failure never blocks traffic.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			if metrics != nil {
				metrics.IncrementRateLimitRejections()
			}
			appErr := apperrors.NewRateLimitError(result.RetryAfter.String())
			c.Header("Retry-After", result.RetryAfter.String())
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		c.Next()
	}
}
