package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
)

type IngredientDTO struct {
	Name   string  `json:"name" validate:"required,min=1,max=150"`
	Amount float64 `json:"amount" validate:"gt=0,lte=99999"`
	Unit   string  `json:"unit" validate:"required,unit"`
}

// RecipeCreateCommand is the body of POST /api/recipes.
type RecipeCreateCommand struct {
	Name        string          `json:"name" validate:"required,min=1,max=120"`
	Description *string         `json:"description" validate:"omitempty,max=65535"`
	Ingredients []IngredientDTO `json:"ingredients" validate:"required,min=1,dive"`
	Steps       []string        `json:"steps" validate:"required,min=1"`
}

// RecipeNutritionOverrideCommand is the body of PATCH /api/recipes/:id/nutrition.
type RecipeNutritionOverrideCommand struct {
	Kcal     *float64 `json:"kcal" validate:"required,gte=0"`
	ProteinG *float64 `json:"protein_g" validate:"required,gte=0"`
	FatG     *float64 `json:"fat_g" validate:"required,gte=0"`
	CarbsG   *float64 `json:"carbs_g" validate:"required,gte=0"`
}

// RecipeDTO is the externally visible recipe.
type RecipeDTO struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"userId"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	Ingredients      []IngredientDTO `json:"ingredients"`
	Steps            []string        `json:"steps"`
	Kcal             *float64        `json:"kcal"`
	ProteinG         *float64        `json:"proteinG"`
	FatG             *float64        `json:"fatG"`
	CarbsG           *float64        `json:"carbsG"`
	IsManualOverride bool            `json:"isManualOverride"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	AiStatus         string          `json:"aiStatus,omitempty"`
	AiErrorMessage   string          `json:"aiErrorMessage,omitempty"`
}

// RecipeFromModel maps a stored row to its DTO field by field.
func RecipeFromModel(r *models.Recipe) RecipeDTO {
	ingredients := make([]IngredientDTO, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = IngredientDTO{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit}
	}
	steps := make([]string, len(r.Steps))
	copy(steps, r.Steps)

	return RecipeDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		Description:      r.Description,
		Ingredients:      ingredients,
		Steps:            steps,
		Kcal:             r.Kcal,
		ProteinG:         r.ProteinG,
		FatG:             r.FatG,
		CarbsG:           r.CarbsG,
		IsManualOverride: r.IsManualOverride,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// IngredientsToModel converts validated command ingredients to stored form.
func IngredientsToModel(in []IngredientDTO) []models.Ingredient {
	out := make([]models.Ingredient, len(in))
	for i, ing := range in {
		out[i] = models.Ingredient{Name: ing.Name, Amount: ing.Amount, Unit: NormalizeUnit(ing.Unit)}
	}
	return out
}

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortName      SortField = "name"
	SortKcal      SortField = "kcal"
)

// RecipeListQuery holds the query string of GET /api/recipes.
type RecipeListQuery struct {
	Page       int      `form:"page" validate:"min=1"`
	Limit      int      `form:"limit" validate:"min=1,max=50"`
	Search     string   `form:"search" validate:"max=120"`
	Sort       string   `form:"sort" validate:"oneof=created_at name kcal"`
	Order      string   `form:"order" validate:"oneof=asc desc"`
	Ingredient []string `form:"ingredient" validate:"dive,max=150"`
}

// DefaultRecipeListQuery returns the query with every default applied.
func DefaultRecipeListQuery() RecipeListQuery {
	return RecipeListQuery{Page: 1, Limit: 20, Sort: string(SortCreatedAt), Order: "desc"}
}

type RecipeListResult struct {
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Total   int64       `json:"total"`
	Results []RecipeDTO `json:"results"`
}
