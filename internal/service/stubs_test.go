package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/models"
)

type stubChat struct {
	mu       sync.Mutex
	content  string
	err      error
	requests []llm.ChatRequest
}

func (s *stubChat) SendChat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content, Model: llm.DefaultModel}, nil
}

type stubNutrition struct {
	result *Nutrition
	err    error
	calls  []uuid.UUID
	// during runs before the result is returned, e.g. to delete the recipe.
	during func(recipeID uuid.UUID)
}

func (s *stubNutrition) Calculate(ctx context.Context, recipeID uuid.UUID, ingredients []models.Ingredient) (*Nutrition, error) {
	s.calls = append(s.calls, recipeID)
	if s.during != nil {
		s.during(recipeID)
	}
	if s.err != nil {
		return nil, s.err
	}
	n := *s.result
	return &n, nil
}
