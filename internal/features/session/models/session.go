package models

import (
	"time"

	usermodels "airdrop-auth-backend/internal/features/user/models"
)

// Session is the response shape the frontend expects from every login
// method. It mirrors what the hosted auth platform returns so the SPA can
// treat both interchangeably.
type Session struct {
	AccessToken  string           `json:"access_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"`
	ExpiresAt    int64            `json:"expires_at"`
	RefreshToken string           `json:"refresh_token"`
	User         *usermodels.User `json:"user"`
}

// RefreshGrant is the server-side record behind an opaque refresh token.
// Only the token's hash is used as the storage key.
type RefreshGrant struct {
	UserID   string    `json:"user_id"`
	Method   string    `json:"method"`
	IssuedAt time.Time `json:"issued_at"`
}
