package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-that-is-at-least-32-bytes-long"

func newAuthService(t *testing.T, rdb *redis.Client) (*AuthService, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	return NewAuthService(db, testJWTSecret, rdb, validation.New(), zap.NewNop()), db
}

func registerRequest(email string) types.RegisterRequest {
	return types.RegisterRequest{Email: email, Password: "tajne123", ConfirmPassword: "tajne123"}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, db := newAuthService(t, nil)

	session, err := svc.Register(ctx, registerRequest("  Kucharz@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "kucharz@example.com", session.Email)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", session.UserID).Error)
	assert.NotEqual(t, "tajne123", user.PasswordHash)

	var profile models.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", session.UserID).Error)
	assert.Empty(t, profile.Allergens)

	_, err = svc.Register(ctx, registerRequest("kucharz@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	svc, db := newAuthService(t, nil)

	// Another registration commits the same email between the count and the insert.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_register", func(tx *gorm.DB) {
		if raced || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "users" {
			return
		}
		raced = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			uuid.New().String(), "kucharz@example.com", "hash", now, now)
	}))

	_, err := svc.Register(context.Background(), registerRequest("kucharz@example.com"))
	assert.True(t, raced)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	tests := []struct {
		name  string
		req   types.RegisterRequest
		field string
	}{
		{"bad email", types.RegisterRequest{Email: "nope", Password: "tajne123", ConfirmPassword: "tajne123"}, "email"},
		{"short password", types.RegisterRequest{Email: "a@example.com", Password: "a1", ConfirmPassword: "a1"}, "password"},
		{"no digit", types.RegisterRequest{Email: "a@example.com", Password: "tajnehaslo", ConfirmPassword: "tajnehaslo"}, "password"},
		{"mismatch", types.RegisterRequest{Email: "a@example.com", Password: "tajne123", ConfirmPassword: "tajne124"}, "confirmPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, nil)
	registered, err := svc.Register(ctx, registerRequest("kucharz@example.com"))
	require.NoError(t, err)

	session, err := svc.Login(ctx, types.LoginRequest{Email: "KUCHARZ@example.com", Password: "tajne123"})
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, session.UserID)

	session, err = svc.Login(ctx, types.LoginRequest{Email: " kucharz@example.com ", Password: "tajne123"})
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, session.UserID)

	_, err = svc.Login(ctx, types.LoginRequest{Email: "kucharz@example.com", Password: "zlehaslo1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, types.LoginRequest{Email: "nikt@example.com", Password: "tajne123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, nil)
	session, err := svc.Register(ctx, registerRequest("kucharz@example.com"))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, session.AccessToken, types.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, claims.UserID)
	assert.Equal(t, "kucharz@example.com", claims.Email)

	_, err = svc.ValidateToken(ctx, session.RefreshToken, types.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, "invalid.token", types.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret-another-secret-1234"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, forged, types.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(AccessTokenTTL + time.Minute) }
	_, err = svc.ValidateToken(ctx, session.AccessToken, types.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, nil)
	session, err := svc.Register(ctx, registerRequest("kucharz@example.com"))
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, refreshed.UserID)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(ctx, session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutIgnoresInvalidTokens(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	assert.NoError(t, svc.Logout(context.Background(), ""))
	assert.NoError(t, svc.Logout(context.Background(), "garbage"))
}

func TestRefreshTokenRevocation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, testhelpers.SetupRedis(t))
	session, err := svc.Register(ctx, registerRequest("kucharz@example.com"))
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.ValidateToken(ctx, rotated.RefreshToken, types.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
