package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pageza/mealplanner/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const abandonedRunMessage = "abandoned: no result recorded before the sweep cutoff"

type SweepResult struct {
	RecipesDeleted int64
	RunsAbandoned  int64
}

// SweepService reconciles the create, calculate, update sequence of recipe
// creation after a crash between its steps.
type SweepService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewSweepService(db *gorm.DB, log *zap.Logger) *SweepService {
	return &SweepService{db: db, log: log, now: time.Now}
}

// Sweep deletes recipes older than olderThan whose nutrition is still all
// zero, that were never overridden by hand and have no successful AiRun. It
// then closes pending AiRuns of the same age as errors.
func (s *SweepService) Sweep(ctx context.Context, olderThan time.Duration) (*SweepResult, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("sweep: cutoff must be positive, got %s", olderThan)
	}
	cutoff := s.now().Add(-olderThan)

	succeeded := s.db.Model(&models.AiRun{}).
		Select("1").
		Where("ai_runs.recipe_id = recipes.id AND ai_runs.status = ?", models.AiRunSuccess)

	var result SweepResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("is_manual_override = ? AND created_at < ?", false, cutoff).
			Where("COALESCE(kcal, 0) = 0 AND COALESCE(protein_g, 0) = 0 AND COALESCE(fat_g, 0) = 0 AND COALESCE(carbs_g, 0) = 0").
			Where("NOT EXISTS (?)", succeeded).
			Delete(&models.Recipe{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete orphaned recipes: %w", res.Error)
		}
		result.RecipesDeleted = res.RowsAffected

		msg := abandonedRunMessage
		res = tx.Model(&models.AiRun{}).
			Where("status = ? AND created_at < ?", models.AiRunPending, cutoff).
			Updates(map[string]any{"status": models.AiRunError, "error_message": &msg})
		if res.Error != nil {
			return fmt.Errorf("failed to close abandoned ai runs: %w", res.Error)
		}
		result.RunsAbandoned = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int64("recipes_deleted", result.RecipesDeleted),
		zap.Int64("runs_abandoned", result.RunsAbandoned))
	return &result, nil
}
