package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, userID uuid.UUID, cmd types.RecipeCreateCommand) (*types.RecipeDTO, error) {
	args := m.Called(ctx, userID, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDTO), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, userID uuid.UUID, query types.RecipeListQuery) (*types.RecipeListResult, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeListResult), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*types.RecipeDTO, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDTO), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecipeService) OverrideNutrition(ctx context.Context, userID, id uuid.UUID, cmd types.RecipeNutritionOverrideCommand) (*types.RecipeDTO, error) {
	args := m.Called(ctx, userID, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDTO), args.Error(1)
}
