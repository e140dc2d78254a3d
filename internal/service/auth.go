package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	revokedKeyPrefix = "auth:revoked:"

	pgUniqueViolation pq.ErrorCode = "23505"
)

// AuthService issues and checks session tokens. Refresh tokens are single-use
// when redis is configured: each rotation revokes the presented token's jti.
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	redis     *redis.Client
	validator *validation.Validator
	log       *zap.Logger
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string, redis *redis.Client, validator *validation.Validator, log *zap.Logger) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		redis:     redis,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*types.Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	email := req.Email

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: string(hash)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{UserID: user.ID, Allergens: datatypes.JSONSlice[string]{}}).Error
	})
	if err != nil {
		// A concurrent registration can pass the count above and lose on the unique index.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", zap.Stringer("user_id", user.ID))
	return s.issueSession(&user)
}

func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (*types.Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(&user)
}

// Refresh exchanges a valid refresh token for a new session and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*types.Session, error) {
	claims, err := s.ValidateToken(ctx, refreshToken, types.RefreshToken)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issueSession(&user)
}

// Logout revokes the refresh token. Invalid or expired tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.parse(refreshToken)
	if err != nil || claims.Type != types.RefreshToken {
		return nil
	}
	return s.revoke(ctx, claims)
}

// ValidateToken parses token, checks its type and, for refresh tokens, that it was not revoked.
func (s *AuthService) ValidateToken(ctx context.Context, token string, typ types.TokenType) (*types.TokenClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, ErrInvalidToken
	}
	if typ == types.RefreshToken && s.redis != nil {
		n, err := s.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if n > 0 {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

func (s *AuthService) parse(token string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *types.TokenClaims) error {
	if s.redis == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) issueSession(user *models.User) (*types.Session, error) {
	now := s.now()
	access, err := s.sign(user, types.AccessToken, now, AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, types.RefreshToken, now, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &types.Session{
		UserID:       user.ID,
		Email:        user.Email,
		ExpiresAt:    now.Add(AccessTokenTTL),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *AuthService) sign(user *models.User, typ types.TokenType, now time.Time, ttl time.Duration) (string, error) {
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Type:   typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation recognises unique index failures from postgres (lib/pq)
// and from sqlite, which gorm passes through untranslated.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
