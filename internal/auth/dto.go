package auth

import (
	"github.com/vigneshnair/bazaarly-backend/internal/users"
)

// SignupRequest captures the payload for creating a new account.
type SignupRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Password        string  `json:"password" validate:"required"`
	PasswordConfirm string  `json:"password_confirm" validate:"required"`
	Address         *string `json:"address,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
// Either email or phone identifies the account.
type LoginRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password" validate:"required"`
}

// TokenResponse contains the bearer token and account produced by a successful login.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	Account     *users.AccountDTO `json:"account"`
}
