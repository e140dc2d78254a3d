package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
)

// ChatSender is the part of the LLM client the nutrition service needs.
type ChatSender interface {
	SendChat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// INutritionService computes and audits nutrition values for one recipe.
type INutritionService interface {
	Calculate(ctx context.Context, recipeID uuid.UUID, ingredients []models.Ingredient) (*Nutrition, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, userID uuid.UUID, cmd types.RecipeCreateCommand) (*types.RecipeDTO, error)
	List(ctx context.Context, userID uuid.UUID, query types.RecipeListQuery) (*types.RecipeListResult, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.RecipeDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	OverrideNutrition(ctx context.Context, userID, id uuid.UUID, cmd types.RecipeNutritionOverrideCommand) (*types.RecipeDTO, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.Session, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*types.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(ctx context.Context, token string, typ types.TokenType) (*types.TokenClaims, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, cmd types.ProfileUpdateCommand) (*types.ProfileDTO, error)
}

// IAiRunService exposes the nutrition audit log.
type IAiRunService interface {
	Get(ctx context.Context, userID uuid.UUID, id uint) (*types.AiRunDTO, error)
}

// ISweepService removes what an interrupted recipe creation left behind.
type ISweepService interface {
	Sweep(ctx context.Context, olderThan time.Duration) (*SweepResult, error)
}
