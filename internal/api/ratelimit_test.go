package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const rateLimitPath = "/api/rate-limits/recipe-creation"

func rateLimitRouter(userID *uuid.UUID, limiter *middleware.RateLimiter) *gin.Engine {
	return newTestRouter(userID, func(g *gin.RouterGroup) {
		g.GET("/rate-limits/recipe-creation", RateLimitStatus(limiter))
	})
}

func TestRateLimitStatusDisabled(t *testing.T) {
	userID := uuid.New()
	limiter := middleware.NewRecipeCreationRateLimiter(nil, 10, time.Minute, zap.NewNop())

	w := doJSON(t, rateLimitRouter(&userID, limiter), http.MethodGet, rateLimitPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"enabled": false}, decode(t, w))

	w = doJSON(t, rateLimitRouter(&userID, nil), http.MethodGet, rateLimitPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["enabled"])
}

func TestRateLimitStatusRequiresUser(t *testing.T) {
	w := doJSON(t, rateLimitRouter(nil, nil), http.MethodGet, rateLimitPath, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitStatusWithRedis(t *testing.T) {
	rdb := testhelpers.SetupRedis(t)
	userID := uuid.New()
	limiter := middleware.NewRecipeCreationRateLimiter(rdb, 3, time.Hour, zap.NewNop())

	allowed, _, _, err := limiter.IsAllowed(context.Background(), userID.String())
	require.NoError(t, err)
	require.True(t, allowed)

	w := doJSON(t, rateLimitRouter(&userID, limiter), http.MethodGet, rateLimitPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, float64(3), body["limit"])
	assert.Equal(t, float64(2), body["remaining"])
	assert.Equal(t, "1h0m0s", body["window"])
	assert.Greater(t, body["resetTime"], float64(time.Now().Unix()-1))
}
