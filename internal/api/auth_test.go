package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/mocks"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthRouter(svc *mocks.MockAuthService, secure bool) *gin.Engine {
	h := NewAuthHandler(svc, secure, zap.NewNop())
	return newTestRouter(nil, h.RegisterRoutes)
}

func testSession() *types.Session {
	return &types.Session{
		UserID:       uuid.New(),
		Email:        "kucharz@example.com",
		ExpiresAt:    time.Now().Add(time.Hour),
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
}

func cookieMap(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestLoginSetsCookies(t *testing.T) {
	svc := new(mocks.MockAuthService)
	req := types.LoginRequest{Email: "kucharz@example.com", Password: "tajne123"}
	session := testSession()
	svc.On("Login", mock.Anything, req).Return(session, nil)

	w := doJSON(t, newAuthRouter(svc, true), http.MethodPost, "/api/auth/login", req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	sess := body["session"].(map[string]any)
	assert.Equal(t, "kucharz@example.com", sess["email"])
	assert.NotContains(t, w.Body.String(), "access")

	cookies := cookieMap(w.Result())
	require.Contains(t, cookies, middleware.AccessTokenCookie)
	require.Contains(t, cookies, middleware.RefreshTokenCookie)
	access := cookies[middleware.AccessTokenCookie]
	assert.Equal(t, "access", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 7*24*60*60, access.MaxAge)
}

func TestLoginErrors(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Login", mock.Anything, mock.MatchedBy(func(r types.LoginRequest) bool { return r.Password == "zle" })).
		Return(nil, service.ErrInvalidCredentials)
	svc.On("Login", mock.Anything, mock.MatchedBy(func(r types.LoginRequest) bool { return r.Email == "nope" })).
		Return(nil, &validation.Error{Fields: map[string]string{"email": "must be a valid email address"}})
	router := newAuthRouter(svc, false)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", types.LoginRequest{Email: "kucharz@example.com", Password: "zle"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Nieprawidłowy email lub hasło"}`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", types.LoginRequest{Email: "nope", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Nieprawidłowe dane wejściowe","errors":{"email":"must be a valid email address"}}`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestRegister(t *testing.T) {
	svc := new(mocks.MockAuthService)
	ok := types.RegisterRequest{Email: "nowy@example.com", Password: "tajne123", ConfirmPassword: "tajne123"}
	taken := types.RegisterRequest{Email: "zajety@example.com", Password: "tajne123", ConfirmPassword: "tajne123"}
	svc.On("Register", mock.Anything, ok).Return(testSession(), nil)
	svc.On("Register", mock.Anything, taken).Return(nil, service.ErrEmailTaken)
	router := newAuthRouter(svc, false)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", ok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, cookieMap(w.Result()), middleware.AccessTokenCookie)

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", taken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Ten adres email jest już zarejestrowany."}`, w.Body.String())
}

func TestLogout(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Logout", mock.Anything, "refresh-token").Return(nil)
	router := newAuthRouter(svc, false)

	req := newRequestWithCookie(t, http.MethodPost, "/api/auth/logout", middleware.RefreshTokenCookie, "refresh-token")
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Wylogowano pomyślnie"}`, w.Body.String())
	cookies := cookieMap(w.Result())
	require.Contains(t, cookies, middleware.AccessTokenCookie)
	assert.Empty(t, cookies[middleware.AccessTokenCookie].Value)
	assert.True(t, cookies[middleware.AccessTokenCookie].MaxAge < 0)
	svc.AssertExpectations(t)
}
