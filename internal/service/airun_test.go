package service

import (
	"context"
	"testing"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAiRunGet(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	owner := testhelpers.CreateUser(t, db, "kucharz@example.com")
	other := testhelpers.CreateUser(t, db, "inny@example.com")
	recipe := testhelpers.CreateRecipe(t, db, owner.ID, "Kurczak z ryżem", 650)

	confidence := 0.9
	run := models.AiRun{RecipeID: recipe.ID, Prompt: "prompt", Status: models.AiRunSuccess, Confidence: &confidence}
	require.NoError(t, db.Create(&run).Error)

	svc := NewAiRunService(db)

	dto, err := svc.Get(ctx, owner.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, dto.ID)
	assert.Equal(t, recipe.ID, dto.RecipeID)
	assert.Equal(t, "success", dto.Status)

	_, err = svc.Get(ctx, other.ID, run.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, owner.ID, run.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Delete(recipe).Error)
	_, err = svc.Get(ctx, owner.ID, run.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
