package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
	"go.uber.org/zap"
)

const recipeCacheControl = "private, max-age=30"

type RecipeHandler struct {
	recipeService   service.IRecipeService
	creationLimiter gin.HandlerFunc
	log             *zap.Logger
}

// NewRecipeHandler creates a handler. creationLimiter guards POST and may be nil.
func NewRecipeHandler(recipeService service.IRecipeService, creationLimiter gin.HandlerFunc, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		creationLimiter: creationLimiter,
		log:             log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		if h.creationLimiter != nil {
			recipes.POST("", h.creationLimiter, h.CreateRecipe)
		} else {
			recipes.POST("", h.CreateRecipe)
		}
		recipes.GET("/:id", h.GetRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.PATCH("/:id/nutrition", h.OverrideNutrition)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var query types.RecipeListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameter", "details": gin.H{"query": err.Error()}})
		return
	}
	query.Ingredient = append(query.Ingredient, c.QueryArray("ingredient[]")...)

	result, err := h.recipeService.List(c.Request.Context(), userID, query)
	if err != nil {
		if details, ok := validationDetails(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameter", "details": details})
			return
		}
		respondError(c, h.log, err, recipeMessages)
		return
	}

	c.Header("Cache-Control", recipeCacheControl)
	c.JSON(http.StatusOK, result)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var cmd types.RecipeCreateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badBody(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, cmd)
	if err != nil {
		respondError(c, h.log, err, recipeMessages)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, id, ok := h.recipeParams(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err, recipeMessages)
		return
	}

	c.Header("Cache-Control", recipeCacheControl)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, id, ok := h.recipeParams(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, recipeMessages)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) OverrideNutrition(c *gin.Context) {
	userID, id, ok := h.recipeParams(c)
	if !ok {
		return
	}

	var cmd types.RecipeNutritionOverrideCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badBody(c, err)
		return
	}

	recipe, err := h.recipeService.OverrideNutrition(c.Request.Context(), userID, id, cmd)
	if err != nil {
		respondError(c, h.log, err, recipeMessages)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// recipeParams resolves the current user and the :id parameter, writing the
// error response itself when either is missing.
func (h *RecipeHandler) recipeParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badID(c, recipeMessages)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
