package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// placeholderConfidence is stored on every successful run until the model
// reports a real confidence.
const placeholderConfidence = 0.9

const nutritionSystemPrompt = `Jesteś dietetykiem, który wylicza wartości odżywcze całych potraw.

ZADANIE:
Na podstawie listy składników z ilościami i jednostkami policz łączną kaloryczność oraz makroskładniki dania.

ZASADY:
1. Korzystaj ze standardowych tabel wartości odżywczych dla surowych produktów.
2. Licz względem 100 g lub 100 ml produktu i przeskaluj do podanej ilości.
3. Przeliczniki jednostek kuchennych:
   - łyżka = 15 g/ml
   - łyżeczka = 5 g/ml
   - szklanka = 250 ml
   - dag = 10 g
   - sztuka, ząbek, plaster, garść, pęczek, szczypta: przyjmij typową masę produktu (np. jajko 50 g, ząbek czosnku 5 g)

FORMAT ODPOWIEDZI (wyłącznie JSON):
{"kcal": liczba, "protein_g": liczba, "fat_g": liczba, "carbs_g": liczba}

WYMAGANIA:
- każda wartość jest liczbą większą lub równą 0
- wartości zaokrąglone do jednego miejsca po przecinku
- bez komentarzy i tekstu poza obiektem JSON`

const nutritionUserPrefix = "Oblicz wartości odżywcze dla następujących składników:\n"

var nutritionFormat = llm.NewJSONSchemaFormat("nutrition_values", json.RawMessage(`{
	"type": "object",
	"properties": {
		"kcal": {"type": "number", "minimum": 0},
		"protein_g": {"type": "number", "minimum": 0},
		"fat_g": {"type": "number", "minimum": 0},
		"carbs_g": {"type": "number", "minimum": 0}
	},
	"required": ["kcal", "protein_g", "fat_g", "carbs_g"]
}`))

// Nutrition holds macro-nutrients for a whole dish.
type Nutrition struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

func (n Nutrition) rounded() Nutrition {
	return Nutrition{
		Kcal:     roundTenth(n.Kcal),
		ProteinG: roundTenth(n.ProteinG),
		FatG:     roundTenth(n.FatG),
		CarbsG:   roundTenth(n.CarbsG),
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// NutritionService asks the LLM for nutrition values and keeps an AiRun audit
// record of every attempt.
type NutritionService struct {
	db  *gorm.DB
	llm ChatSender
	log *zap.Logger
}

func NewNutritionService(db *gorm.DB, llm ChatSender, log *zap.Logger) *NutritionService {
	return &NutritionService{db: db, llm: llm, log: log}
}

// Calculate creates one pending AiRun for recipeID, calls the model and moves
// the run to success or error. The error from any step is returned unchanged.
func (s *NutritionService) Calculate(ctx context.Context, recipeID uuid.UUID, ingredients []models.Ingredient) (*Nutrition, error) {
	list := formatIngredients(ingredients)

	run := models.AiRun{
		RecipeID: recipeID,
		Prompt:   nutritionSystemPrompt + "\n\nSkładniki:\n" + list,
		Status:   models.AiRunPending,
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create ai run: %w", err)
	}

	nutrition, err := s.complete(ctx, &run, list)
	if err != nil {
		s.markFailed(ctx, recipeID, err)
		return nil, err
	}
	return nutrition, nil
}

func (s *NutritionService) complete(ctx context.Context, run *models.AiRun, list string) (*Nutrition, error) {
	resp, err := s.llm.SendChat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: nutritionSystemPrompt},
			{Role: llm.RoleUser, Content: nutritionUserPrefix + list},
		},
		ResponseFormat: nutritionFormat,
	})
	if err != nil {
		return nil, err
	}

	var parsed Nutrition
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition response: %w", err)
	}
	nutrition := parsed.rounded()

	// The run keeps the upstream payload as returned; rounding applies to the recipe only.
	confidence := placeholderConfidence
	res := s.db.WithContext(ctx).Model(&models.AiRun{}).
		Where("id = ? AND status = ?", run.ID, models.AiRunPending).
		Updates(map[string]any{
			"status":     models.AiRunSuccess,
			"response":   datatypes.JSON(resp.Content),
			"confidence": &confidence,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record ai run result: %w", res.Error)
	}

	s.log.Info("nutrition calculated",
		zap.Stringer("recipe_id", run.RecipeID),
		zap.Uint("ai_run_id", run.ID),
		zap.String("model", resp.Model))
	return &nutrition, nil
}

// markFailed moves the pending runs of recipeID to error. Terminal runs are
// never touched. The update ignores cancellation of ctx.
func (s *NutritionService) markFailed(ctx context.Context, recipeID uuid.UUID, cause error) {
	msg := cause.Error()
	res := s.db.WithContext(context.WithoutCancel(ctx)).Model(&models.AiRun{}).
		Where("recipe_id = ? AND status = ?", recipeID, models.AiRunPending).
		Updates(map[string]any{
			"status":        models.AiRunError,
			"error_message": &msg,
		})
	if res.Error != nil {
		s.log.Error("failed to record ai run failure",
			zap.Stringer("recipe_id", recipeID),
			zap.NamedError("cause", cause),
			zap.Error(res.Error))
		return
	}
	s.log.Warn("nutrition calculation failed", zap.Stringer("recipe_id", recipeID), zap.Error(cause))
}

// formatIngredients renders "- name: amount unit" lines.
func formatIngredients(ingredients []models.Ingredient) string {
	lines := make([]string, len(ingredients))
	for i, ing := range ingredients {
		lines[i] = fmt.Sprintf("- %s: %s %s", ing.Name, strconv.FormatFloat(ing.Amount, 'f', -1, 64), ing.Unit)
	}
	return strings.Join(lines, "\n")
}
