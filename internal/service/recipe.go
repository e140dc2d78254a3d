package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortColumns = map[string]string{
	string(types.SortCreatedAt): "created_at",
	string(types.SortName):      "name",
	string(types.SortKcal):      "kcal",
}

// RecipeService handles recipe operations
type RecipeService struct {
	db        *gorm.DB
	nutrition INutritionService
	validator *validation.Validator
	log       *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, nutrition INutritionService, validator *validation.Validator, log *zap.Logger) *RecipeService {
	return &RecipeService{
		db:        db,
		nutrition: nutrition,
		validator: validator,
		log:       log,
	}
}

// Create validates cmd, enforces the per-user quota, stores the recipe and
// fills in its nutrition. If the nutrition step fails the recipe row is
// removed again and the original error is returned.
func (s *RecipeService) Create(ctx context.Context, userID uuid.UUID, cmd types.RecipeCreateCommand) (*types.RecipeDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	if count >= models.MaxRecipesPerUser {
		return nil, ErrQuotaExceeded
	}

	recipe := models.Recipe{
		UserID:      userID,
		Name:        cmd.Name,
		Description: cmd.Description,
		Ingredients: datatypes.JSONSlice[models.Ingredient](types.IngredientsToModel(cmd.Ingredients)),
		Steps:       datatypes.JSONSlice[string](cmd.Steps),
		Kcal:        zero(),
		ProteinG:    zero(),
		FatG:        zero(),
		CarbsG:      zero(),
	}
	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	nutrition, err := s.nutrition.Calculate(ctx, recipe.ID, recipe.Ingredients)
	if err != nil {
		s.discard(ctx, recipe.ID, err)
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		res := tx.Model(&recipe).Updates(map[string]any{
			"kcal":      nutrition.Kcal,
			"protein_g": nutrition.ProteinG,
			"fat_g":     nutrition.FatG,
			"carbs_g":   nutrition.CarbsG,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		// The successful AiRun stays behind as an orphan audit record.
		s.log.Warn("recipe deleted before nutrition was stored", zap.Stringer("recipe_id", recipe.ID))
		return nil, ErrNotFound
	}
	if err != nil {
		s.discard(ctx, recipe.ID, err)
		return nil, fmt.Errorf("failed to store nutrition: %w", err)
	}
	recipe.Kcal, recipe.ProteinG, recipe.FatG, recipe.CarbsG = &nutrition.Kcal, &nutrition.ProteinG, &nutrition.FatG, &nutrition.CarbsG

	dto := types.RecipeFromModel(&recipe)
	dto.AiStatus = string(models.AiRunSuccess)
	return &dto, nil
}

// discard is the compensating delete for a failed creation. Its own failure
// is only logged; the sweep command removes anything left over.
func (s *RecipeService) discard(ctx context.Context, id uuid.UUID, cause error) {
	err := s.db.WithContext(context.WithoutCancel(ctx)).Delete(&models.Recipe{}, "id = ?", id).Error
	if err != nil {
		s.log.Error("failed to delete recipe after nutrition failure",
			zap.Stringer("recipe_id", id),
			zap.NamedError("cause", cause),
			zap.Error(err))
	}
}

// List returns one page of the user's recipes. Zero values in query take
// their defaults.
func (s *RecipeService) List(ctx context.Context, userID uuid.UUID, query types.RecipeListQuery) (*types.RecipeListResult, error) {
	query = withListDefaults(query)
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	filtered := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID)
		if search := strings.TrimSpace(query.Search); search != "" {
			tx = s.whereNameContains(tx, search)
		}
		for _, name := range query.Ingredient {
			if name = strings.TrimSpace(name); name != "" {
				tx = s.whereHasIngredient(tx, name)
			}
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	var rows []models.Recipe
	err := filtered().
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumns[query.Sort]}, Desc: query.Order == "desc"}).
		Order("id").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	results := make([]types.RecipeDTO, len(rows))
	for i := range rows {
		results[i] = types.RecipeFromModel(&rows[i])
	}
	return &types.RecipeListResult{
		Page:    query.Page,
		Limit:   query.Limit,
		Total:   total,
		Results: results,
	}, nil
}

func withListDefaults(q types.RecipeListQuery) types.RecipeListQuery {
	defaults := types.DefaultRecipeListQuery()
	if q.Page == 0 {
		q.Page = defaults.Page
	}
	if q.Limit == 0 {
		q.Limit = defaults.Limit
	}
	if q.Sort == "" {
		q.Sort = defaults.Sort
	}
	if q.Order == "" {
		q.Order = defaults.Order
	}
	return q
}

func (s *RecipeService) whereNameContains(tx *gorm.DB, search string) *gorm.DB {
	pattern := "%" + escapeLike(search) + "%"
	if s.db.Dialector.Name() == "postgres" {
		return tx.Where("name ILIKE ?", pattern)
	}
	return tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, strings.ToLower(pattern))
}

func (s *RecipeService) whereHasIngredient(tx *gorm.DB, name string) *gorm.DB {
	if s.db.Dialector.Name() == "postgres" {
		needle, _ := json.Marshal([]map[string]string{{"name": name}})
		return tx.Where("ingredients @> ?::jsonb", string(needle))
	}
	return tx.Where("EXISTS (SELECT 1 FROM json_each(CAST(recipes.ingredients AS TEXT)) WHERE json_extract(json_each.value, '$.name') = ?)", name)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Get loads a recipe without scoping by owner, then checks ownership, so a
// missing recipe and someone else's recipe are reported differently.
func (s *RecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*types.RecipeDTO, error) {
	recipe, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	dto := types.RecipeFromModel(recipe)

	var runs []models.AiRun
	err = s.db.WithContext(ctx).
		Where("recipe_id = ?", id).
		Order("created_at desc").Order("id desc").
		Limit(1).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ai run: %w", err)
	}
	if len(runs) > 0 {
		dto.AiStatus = string(runs[0].Status)
		if runs[0].ErrorMessage != nil {
			dto.AiErrorMessage = *runs[0].ErrorMessage
		}
	}
	return &dto, nil
}

// Delete removes a recipe owned by userID. Its AiRuns are kept.
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// OverrideNutrition replaces the nutrition values by hand and flags the
// recipe as manually overridden.
func (s *RecipeService) OverrideNutrition(ctx context.Context, userID, id uuid.UUID, cmd types.RecipeNutritionOverrideCommand) (*types.RecipeDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}
	recipe, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(recipe).Updates(map[string]any{
		"kcal":               *cmd.Kcal,
		"protein_g":          *cmd.ProteinG,
		"fat_g":              *cmd.FatG,
		"carbs_g":            *cmd.CarbsG,
		"is_manual_override": true,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to override nutrition: %w", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *RecipeService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.UserID != userID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func zero() *float64 {
	v := 0.0
	return &v
}
