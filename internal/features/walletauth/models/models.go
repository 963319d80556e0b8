package models

// LoginRequest is the wallet challenge-response login payload. The client
// signs the fixed challenge message with the wallet's key.
type LoginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	ChainID   int64  `json:"chainId" binding:"required"`
}

// LoginResponse is the trimmed session payload the wallet flow returns.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Address      string `json:"address"`
}
