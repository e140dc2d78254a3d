package types

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Session is the token pair issued on login. Tokens travel as cookies; the
// JSON body only carries the metadata.
type Session struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expiresAt"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
}

type AuthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Session *Session          `json:"session,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}
