package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignupRequest registers a new staff account; it starts in pending status.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses. The approval status
// is included so clients can show the pending-approval screen after login.
type UserInfo struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	FullName      string        `json:"full_name,omitempty"`
	AccountStatus AccountStatus `json:"account_status"`
	IsAdmin       bool          `json:"is_admin"`
}

// JWTClaims represents the JWT payload for access tokens. Approval status and
// roles are deliberately absent: both are resolved per request so that admin
// decisions take effect without waiting for token expiry.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
