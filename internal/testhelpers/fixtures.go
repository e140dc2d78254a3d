package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateUser inserts a user with an unusable password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// ChickenWithRice is the reference recipe used across tests.
func ChickenWithRice() types.RecipeCreateCommand {
	description := "Prosty i zdrowy obiad bogaty w białko"
	return types.RecipeCreateCommand{
		Name:        "Kurczak z ryżem",
		Description: &description,
		Ingredients: []types.IngredientDTO{
			{Name: "Pierś z kurczaka", Amount: 200, Unit: "g"},
			{Name: "Ryż biały", Amount: 100, Unit: "g"},
			{Name: "Brokuły", Amount: 150, Unit: "g"},
			{Name: "Oliwa z oliwek", Amount: 15, Unit: "ml"},
		},
		Steps: []string{
			"Ugotuj ryż według instrukcji na opakowaniu",
			"Pokrój kurczaka w kostkę i usmaż na oliwie",
			"Ugotuj brokuły na parze",
			"Połącz wszystkie składniki",
		},
	}
}

// CreateRecipe inserts a recipe row directly, bypassing the nutrition step.
func CreateRecipe(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, kcal float64, ingredients ...string) *models.Recipe {
	t.Helper()
	if len(ingredients) == 0 {
		ingredients = []string{"Woda"}
	}
	items := make([]models.Ingredient, len(ingredients))
	for i, ing := range ingredients {
		items[i] = models.Ingredient{Name: ing, Amount: 100, Unit: "g"}
	}
	zero := 0.0
	recipe := &models.Recipe{
		UserID:      userID,
		Name:        name,
		Ingredients: datatypes.JSONSlice[models.Ingredient](items),
		Steps:       datatypes.JSONSlice[string]{"Przygotuj"},
		Kcal:        &kcal,
		ProteinG:    &zero,
		FatG:        &zero,
		CarbsG:      &zero,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
