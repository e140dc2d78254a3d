package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService service.IProfileService
	log            *zap.Logger
}

func NewProfileHandler(profileService service.IProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, resourceMessages{})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var cmd types.ProfileUpdateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badBody(c, err)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), userID, cmd)
	if err != nil {
		respondError(c, h.log, err, resourceMessages{})
		return
	}

	c.JSON(http.StatusOK, profile)
}
