package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
)

type AiRunDTO struct {
	ID           uint            `json:"id"`
	RecipeID     uuid.UUID       `json:"recipeId"`
	Prompt       string          `json:"prompt"`
	Status       string          `json:"status"`
	Response     json.RawMessage `json:"response"`
	ErrorMessage *string         `json:"errorMessage"`
	Confidence   *float64        `json:"confidence"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func AiRunFromModel(r *models.AiRun) AiRunDTO {
	var response json.RawMessage
	if len(r.Response) > 0 {
		response = json.RawMessage(r.Response)
	}
	return AiRunDTO{
		ID:           r.ID,
		RecipeID:     r.RecipeID,
		Prompt:       r.Prompt,
		Status:       string(r.Status),
		Response:     response,
		ErrorMessage: r.ErrorMessage,
		Confidence:   r.Confidence,
		CreatedAt:    r.CreatedAt,
	}
}
