package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"go.uber.org/zap"
)

type AiRunHandler struct {
	aiRunService service.IAiRunService
	log          *zap.Logger
}

func NewAiRunHandler(aiRunService service.IAiRunService, log *zap.Logger) *AiRunHandler {
	return &AiRunHandler{aiRunService: aiRunService, log: log}
}

func (h *AiRunHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ai-runs/:id", h.GetAiRun)
}

func (h *AiRunHandler) GetAiRun(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badID(c, aiRunMessages)
		return
	}

	run, err := h.aiRunService.Get(c.Request.Context(), userID, uint(id))
	if err != nil {
		respondError(c, h.log, err, aiRunMessages)
		return
	}

	c.JSON(http.StatusOK, run)
}
