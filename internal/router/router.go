package router

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"go.uber.org/zap"
)

// Dependencies are the services and settings the routes are built from.
type Dependencies struct {
	AuthService    service.IAuthService
	RecipeService  service.IRecipeService
	ProfileService service.IProfileService
	AiRunService   service.IAiRunService

	// CreationLimiter limits POST /api/recipes; nil disables it.
	CreationLimiter *middleware.RateLimiter

	// HealthCheck backs GET /health; nil always reports ok.
	HealthCheck func(ctx context.Context) error

	CORSOrigins   []string
	SecureCookies bool
	Logger        *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(middleware.Session(deps.AuthService, deps.SecureCookies, log))

	router.GET("/health", api.HealthCheck(deps.HealthCheck))

	var creationLimit gin.HandlerFunc
	if deps.CreationLimiter != nil {
		creationLimit = deps.CreationLimiter.Middleware()
	}

	apiGroup := router.Group("/api")
	api.NewAuthHandler(deps.AuthService, deps.SecureCookies, log).RegisterRoutes(apiGroup)
	api.NewRecipeHandler(deps.RecipeService, creationLimit, log).RegisterRoutes(apiGroup)
	api.NewProfileHandler(deps.ProfileService, log).RegisterRoutes(apiGroup)
	api.NewAiRunHandler(deps.AiRunService, log).RegisterRoutes(apiGroup)
	apiGroup.GET("/units", api.ListUnits)
	apiGroup.GET("/rate-limits/recipe-creation", api.RateLimitStatus(deps.CreationLimiter))

	return router
}
