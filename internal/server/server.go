package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/router"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	log    *zap.Logger
}

// New connects to the database and redis, applies migrations and wires the
// application.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		return nil, err
	}

	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return nil, err
	}

	client, err := NewLLMClient(cfg, log)
	if err != nil {
		return nil, err
	}

	return Build(cfg, db, rdb, client, log), nil
}

// NewLLMClient configures the OpenRouter client from cfg.
func NewLLMClient(cfg *config.Config, log *zap.Logger) (*llm.Client, error) {
	client, err := llm.New(llm.Config{
		APIKey:       cfg.OpenRouterAPIKey,
		BaseURL:      cfg.OpenRouterBaseURL,
		Model:        cfg.OpenRouterModel,
		Referer:      cfg.SiteURL,
		Title:        cfg.SiteName,
		NativeSchema: cfg.OpenRouterNativeSchema,
	}, llm.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return client, nil
}

// Build wires services and routes around already open connections. rdb may
// be nil.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, chat service.ChatSender, log *zap.Logger) *Server {
	v := validation.New()

	authService := service.NewAuthService(db, cfg.JWTSecret, rdb, v, log)
	nutritionService := service.NewNutritionService(db, chat, log)
	recipeService := service.NewRecipeService(db, nutritionService, v, log)

	var limiter *middleware.RateLimiter
	if rdb != nil {
		limiter = middleware.NewRecipeCreationRateLimiter(rdb, cfg.RecipeRateLimit, cfg.RecipeRateWindow, log)
	}

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(router.Dependencies{
		AuthService:     authService,
		RecipeService:   recipeService,
		ProfileService:  service.NewProfileService(db, v),
		AiRunService:    service.NewAiRunService(db),
		CreationLimiter: limiter,
		HealthCheck: func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		},
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.Environment.IsProduction(),
		Logger:        log,
	})

	return &Server{
		cfg:    cfg,
		router: r,
		db:     db,
		redis:  rdb,
		log:    log,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Close releases the database and redis connections.
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if sqlDB, err := s.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	} else {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
