package models

import "time"

// TokenRecord is what the one-time token store keeps per issued token. The
// raw token itself is never persisted, only its keyed hash.
type TokenRecord struct {
	TelegramID int64     `json:"telegram_id"`
	Purpose    string    `json:"purpose"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type RequestLoginRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
}

type RequestLoginResponse struct {
	Success bool `json:"success"`
}

type VerifyLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type MiniAppLoginRequest struct {
	InitData string `json:"init_data" binding:"required"`
}
