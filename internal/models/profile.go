package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile holds per-user dietary settings. One row per user, keyed by user id.
type Profile struct {
	UserID        uuid.UUID                   `gorm:"type:varchar(36);primarykey" json:"user_id"`
	CalorieTarget *int                        `json:"calorie_target"`
	Allergens     datatypes.JSONSlice[string] `gorm:"not null" json:"allergens"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
