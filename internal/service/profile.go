package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileService struct {
	db        *gorm.DB
	validator *validation.Validator
}

func NewProfileService(db *gorm.DB, validator *validation.Validator) *ProfileService {
	return &ProfileService{db: db, validator: validator}
}

// Get returns the user's profile, creating an empty one on first access.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*types.ProfileDTO, error) {
	profile, err := s.load(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	dto := types.ProfileFromModel(profile)
	return &dto, nil
}

// Update applies the fields present in cmd.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, cmd types.ProfileUpdateCommand) (*types.ProfileDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	var dto types.ProfileDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.load(tx, userID)
		if err != nil {
			return err
		}
		if cmd.CalorieTarget != nil {
			profile.CalorieTarget = cmd.CalorieTarget
		}
		if cmd.Allergens != nil {
			profile.Allergens = datatypes.JSONSlice[string](cmd.Allergens)
		}
		if err := tx.Save(profile).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		dto = types.ProfileFromModel(profile)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *ProfileService) load(tx *gorm.DB, userID uuid.UUID) (*models.Profile, error) {
	profile := models.Profile{UserID: userID}
	err := tx.Where(models.Profile{UserID: userID}).
		Attrs(models.Profile{Allergens: datatypes.JSONSlice[string]{}}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}
