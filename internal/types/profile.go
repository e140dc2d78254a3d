package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
)

type ProfileDTO struct {
	UserID        uuid.UUID `json:"userId"`
	CalorieTarget *int      `json:"calorieTarget"`
	Allergens     []string  `json:"allergens"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProfileUpdateCommand is the body of PUT /api/profile. Omitted fields are kept.
type ProfileUpdateCommand struct {
	CalorieTarget *int     `json:"calorieTarget" validate:"omitempty,min=1,max=20000"`
	Allergens     []string `json:"allergens" validate:"omitempty,max=50,dive,required,max=100"`
}

func ProfileFromModel(p *models.Profile) ProfileDTO {
	allergens := make([]string, len(p.Allergens))
	copy(allergens, p.Allergens)
	return ProfileDTO{
		UserID:        p.UserID,
		CalorieTarget: p.CalorieTarget,
		Allergens:     allergens,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
