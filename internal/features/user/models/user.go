package models

import "time"

// User is the stable internal identity a login method resolves to. At most
// one wallet address and one Telegram id may be linked, each unique across
// all users.
type User struct {
	ID         string    `json:"id"`
	Address    string    `json:"address,omitempty"`
	TelegramID int64     `json:"telegram_id,omitempty"`
	Email      string    `json:"email"`
	Secret     string    `json:"-"`
	Name       string    `json:"name,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileUpdate carries the owner-mutable fields. Nil means "leave as is".
type ProfileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}
