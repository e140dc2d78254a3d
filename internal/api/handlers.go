package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
)

// HealthCheck returns the health status of the API. ping may be nil.
func HealthCheck(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ListUnits returns the accepted ingredient units.
func ListUnits(c *gin.Context) {
	units := make([]string, len(types.Units))
	copy(units, types.Units)
	c.JSON(http.StatusOK, types.UnitsResponse{Units: units})
}

// RateLimitStatus reports the caller's remaining recipe creations.
func RateLimitStatus(limiter *middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			unauthorized(c)
			return
		}
		if limiter == nil || !limiter.Enabled() {
			c.JSON(http.StatusOK, gin.H{"enabled": false})
			return
		}

		remaining, resetTime, err := limiter.Status(c.Request.Context(), userID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"enabled":   true,
			"limit":     limiter.Limit(),
			"remaining": remaining,
			"resetTime": resetTime.Unix(),
			"window":    limiter.Window().String(),
		})
	}
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func validationDetails(err error) (map[string]string, bool) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
