package repository

import (
	"context"
	"errors"

	"airdrop-auth-backend/internal/features/user/models"
)

var (
	ErrUserNotFound = errors.New("user not found")

	// ErrIdentityExists is returned by Create when the unique constraint on
	// address or telegram_id fires. The caller treats it as "someone else
	// just created this identity" and re-fetches.
	ErrIdentityExists = errors.New("identity already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByAddress(ctx context.Context, address string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error)
}
