package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"go.uber.org/zap"
)

const (
	msgInvalidInput       = "Nieprawidłowe dane wejściowe"
	msgInvalidCredentials = "Nieprawidłowy email lub hasło"
	msgEmailTaken         = "Ten adres email jest już zarejestrowany."
	msgLoggedOut          = "Wylogowano pomyślnie"
	msgUnexpected         = "Wystąpił nieoczekiwany błąd"
)

type AuthHandler struct {
	authService   service.IAuthService
	secureCookies bool
	log           *zap.Logger
}

func NewAuthHandler(authService service.IAuthService, secureCookies bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		log:           log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.AuthResponse{Status: "error", Message: msgInvalidInput})
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	middleware.SetSessionCookies(c, session, h.secureCookies)
	c.JSON(http.StatusOK, types.AuthResponse{Status: "ok", Session: session})
}

// Register creates the account and logs the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.AuthResponse{Status: "error", Message: msgInvalidInput})
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	middleware.SetSessionCookies(c, session, h.secureCookies)
	c.JSON(http.StatusOK, types.AuthResponse{Status: "ok", Session: session})
}

// Logout always clears the cookies, even when revocation fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(middleware.RefreshTokenCookie)
	if err := h.authService.Logout(c.Request.Context(), refresh); err != nil {
		h.log.Warn("failed to revoke refresh token", zap.Error(err))
	}
	middleware.ClearSessionCookies(c, h.secureCookies)
	c.JSON(http.StatusOK, types.AuthResponse{Status: "ok", Message: msgLoggedOut})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, types.AuthResponse{Status: "error", Message: msgInvalidInput, Errors: verr.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, types.AuthResponse{Status: "error", Message: msgInvalidCredentials})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, types.AuthResponse{Status: "error", Message: msgEmailTaken})
	default:
		h.log.Error("auth request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.AuthResponse{Status: "error", Message: msgUnexpected})
	}
}
