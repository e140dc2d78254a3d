package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/mocks"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetProfile(t *testing.T) {
	userID := uuid.New()
	svc := new(mocks.MockProfileService)
	svc.On("Get", mock.Anything, userID).Return(&types.ProfileDTO{UserID: userID, Allergens: []string{"orzechy"}}, nil)
	router := newTestRouter(&userID, NewProfileHandler(svc, zap.NewNop()).RegisterRoutes)

	w := doJSON(t, router, http.MethodGet, "/api/profile", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, userID.String(), body["userId"])
	assert.Equal(t, []any{"orzechy"}, body["allergens"])
}

func TestUpdateProfile(t *testing.T) {
	userID := uuid.New()
	target := 2000
	svc := new(mocks.MockProfileService)
	svc.On("Update", mock.Anything, userID, types.ProfileUpdateCommand{CalorieTarget: &target}).
		Return(&types.ProfileDTO{UserID: userID, CalorieTarget: &target, Allergens: []string{}}, nil)
	svc.On("Update", mock.Anything, userID, mock.MatchedBy(func(cmd types.ProfileUpdateCommand) bool {
		return cmd.CalorieTarget != nil && *cmd.CalorieTarget == 0
	})).Return(nil, &validation.Error{Fields: map[string]string{"calorieTarget": "must be at least 1"}})
	router := newTestRouter(&userID, NewProfileHandler(svc, zap.NewNop()).RegisterRoutes)

	w := doJSON(t, router, http.MethodPut, "/api/profile", `{"calorieTarget": 2000}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2000.0, decode(t, w)["calorieTarget"])

	w = doJSON(t, router, http.MethodPut, "/api/profile", `{"calorieTarget": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Bad Request","details":{"calorieTarget":"must be at least 1"}}`, w.Body.String())
}

func TestGetAiRun(t *testing.T) {
	userID := uuid.New()
	svc := new(mocks.MockAiRunService)
	svc.On("Get", mock.Anything, userID, uint(7)).Return(&types.AiRunDTO{ID: 7, Status: "success"}, nil)
	svc.On("Get", mock.Anything, userID, uint(8)).Return(nil, service.ErrForbidden)
	router := newTestRouter(&userID, NewAiRunHandler(svc, zap.NewNop()).RegisterRoutes)

	w := doJSON(t, router, http.MethodGet, "/api/ai-runs/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w)["status"])

	w = doJSON(t, router, http.MethodGet, "/api/ai-runs/8", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/ai-runs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w)["error"])
}

func TestUnitsAndHealth(t *testing.T) {
	router := newTestRouter(nil, func(g *gin.RouterGroup) {
		g.GET("/units", ListUnits)
		g.GET("/health", HealthCheck(nil))
		g.GET("/health/down", HealthCheck(func(context.Context) error { return errors.New("db down") }))
	})

	w := doJSON(t, router, http.MethodGet, "/api/units", nil)
	require.Equal(t, http.StatusOK, w.Code)
	units := decode(t, w)["units"].([]any)
	assert.Len(t, units, 14)
	assert.Equal(t, "g", units[0])
	assert.Equal(t, "ząbek", units[13])

	w = doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/health/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
