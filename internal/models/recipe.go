package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxRecipesPerUser is the creation quota.
const MaxRecipesPerUser = 100

// Ingredient is one line of a recipe. It has no identity beyond its position.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type Recipe struct {
	ID               uuid.UUID                       `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID           uuid.UUID                       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name             string                          `gorm:"size:120;not null" json:"name"`
	Description      *string                         `gorm:"type:text" json:"description"`
	Ingredients      datatypes.JSONSlice[Ingredient] `gorm:"not null" json:"ingredients"`
	Steps            datatypes.JSONSlice[string]     `gorm:"not null" json:"steps"`
	Kcal             *float64                        `json:"kcal"`
	ProteinG         *float64                        `gorm:"column:protein_g" json:"protein_g"`
	FatG             *float64                        `gorm:"column:fat_g" json:"fat_g"`
	CarbsG           *float64                        `gorm:"column:carbs_g" json:"carbs_g"`
	IsManualOverride bool                            `gorm:"not null;default:false" json:"is_manual_override"`
	CreatedAt        time.Time                       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time                       `json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
