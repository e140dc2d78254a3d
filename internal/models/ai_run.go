package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AiRunStatus string

const (
	AiRunPending AiRunStatus = "pending"
	AiRunSuccess AiRunStatus = "success"
	AiRunError   AiRunStatus = "error"
)

// AiRun is the audit record of one nutrition calculation. RecipeID is a weak
// reference: runs outlive the recipe they were created for.
type AiRun struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	RecipeID     uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
	Prompt       string         `gorm:"type:text;not null" json:"prompt"`
	Status       AiRunStatus    `gorm:"size:16;not null;default:pending" json:"status"`
	Response     datatypes.JSON `json:"response"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message"`
	Confidence   *float64       `json:"confidence"`
	CreatedAt    time.Time      `json:"created_at"`
}
