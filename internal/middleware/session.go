package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"

	// sessionCookieMaxAge is 7 days in seconds, for both cookies.
	sessionCookieMaxAge = 7 * 24 * 60 * 60

	contextUserID = "user_id"
	contextEmail  = "email"

	loginPage   = "/auth/login"
	recipesPage = "/recipes"
)

var publicPaths = map[string]bool{
	"/health":            true,
	"/api/auth/login":    true,
	"/api/auth/register": true,
	"/api/auth/logout":   true,
}

// SessionAuthenticator validates and rotates session tokens.
type SessionAuthenticator interface {
	ValidateToken(ctx context.Context, token string, typ types.TokenType) (*types.TokenClaims, error)
	Refresh(ctx context.Context, refreshToken string) (*types.Session, error)
}

// Session resolves the current user from the session cookies or a bearer
// token and guards non-public routes. An expired access token is replaced
// using the refresh token, and both cookies are rotated.
func Session(auth SessionAuthenticator, secureCookies bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		authenticated := authenticate(c, auth, secureCookies, log)

		switch {
		case publicPaths[path]:
			c.Next()
		case authenticated && strings.HasPrefix(path, "/auth/"):
			c.Redirect(http.StatusFound, recipesPage)
			c.Abort()
		case authenticated:
			c.Next()
		case strings.HasPrefix(path, "/api/"):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		case path == recipesPage || strings.HasPrefix(path, recipesPage+"/"):
			c.Redirect(http.StatusFound, loginPage+"?next="+url.QueryEscape(path))
			c.Abort()
		default:
			c.Next()
		}
	}
}

func authenticate(c *gin.Context, auth SessionAuthenticator, secureCookies bool, log *zap.Logger) bool {
	ctx := c.Request.Context()

	access := accessToken(c)
	if access != "" {
		claims, err := auth.ValidateToken(ctx, access, types.AccessToken)
		if err == nil {
			SetUser(c, claims.UserID, claims.Email)
			return true
		}
		if !errors.Is(err, service.ErrTokenExpired) {
			return false
		}
	}

	refresh, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refresh == "" {
		return false
	}
	session, err := auth.Refresh(ctx, refresh)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidToken) && !errors.Is(err, service.ErrTokenExpired) {
			log.Warn("session refresh failed", zap.Error(err))
		}
		return false
	}
	SetSessionCookies(c, session, secureCookies)
	SetUser(c, session.UserID, session.Email)
	return true
}

func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SetUser stores the authenticated user on the request context.
func SetUser(c *gin.Context, userID uuid.UUID, email string) {
	c.Set(contextUserID, userID)
	c.Set(contextEmail, email)
}

// UserID returns the authenticated user's id set by Session.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// SetSessionCookies stores both tokens as httpOnly, SameSite=Lax cookies.
func SetSessionCookies(c *gin.Context, session *types.Session, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, session.AccessToken, sessionCookieMaxAge, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, session.RefreshToken, sessionCookieMaxAge, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
