package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"gorm.io/gorm"
)

type AiRunService struct {
	db *gorm.DB
}

func NewAiRunService(db *gorm.DB) *AiRunService {
	return &AiRunService{db: db}
}

// Get returns a run if its recipe belongs to userID. Runs whose recipe was
// deleted have no owner and are reported as not found.
func (s *AiRunService) Get(ctx context.Context, userID uuid.UUID, id uint) (*types.AiRunDTO, error) {
	var run models.AiRun
	if err := s.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ai run: %w", err)
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "user_id").First(&recipe, "id = ?", run.RecipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.UserID != userID {
		return nil, ErrForbidden
	}

	dto := types.AiRunFromModel(&run)
	return &dto, nil
}
