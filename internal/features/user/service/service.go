package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/features/user/models"
	"airdrop-auth-backend/internal/features/user/repository"
)

// Service resolves external identities (wallet address, Telegram id) to
// internal user records, creating one on first sight.
type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// ResolveByAddress returns the user linked to address, creating a new one
// if none exists. The second return value reports whether a record was
// created by this call.
func (s *Service) ResolveByAddress(ctx context.Context, address string) (*models.User, bool, error) {
	address = strings.ToLower(address)

	user, err := s.repo.GetByAddress(ctx, address)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, apperrors.NewDatabaseError("get user by address", err)
	}

	created := &models.User{
		ID:      uuid.New().String(),
		Address: address,
		Email:   fmt.Sprintf("%s@wallet.internal", address),
		Secret:  randomSecret(),
	}
	return s.create(ctx, created, func() (*models.User, error) {
		return s.repo.GetByAddress(ctx, address)
	})
}

// ResolveByTelegramID returns the user linked to telegramID, creating a new
// one if none exists.
func (s *Service) ResolveByTelegramID(ctx context.Context, telegramID int64) (*models.User, bool, error) {
	user, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, apperrors.NewDatabaseError("get user by telegram id", err)
	}

	created := &models.User{
		ID:         uuid.New().String(),
		TelegramID: telegramID,
		Email:      fmt.Sprintf("%d@telegram.internal", telegramID),
		Secret:     randomSecret(),
	}
	return s.create(ctx, created, func() (*models.User, error) {
		return s.repo.GetByTelegramID(ctx, telegramID)
	})
}

// create inserts the candidate row. A unique-constraint violation means a
// concurrent request won the insert race, so the winner's row is re-fetched
// instead of surfacing an error.
func (s *Service) create(ctx context.Context, candidate *models.User, refetch func() (*models.User, error)) (*models.User, bool, error) {
	err := s.repo.Create(ctx, candidate)
	if err == nil {
		user, getErr := refetch()
		if getErr != nil {
			return nil, false, apperrors.NewDatabaseError("fetch created user", getErr)
		}
		return user, true, nil
	}
	if errors.Is(err, repository.ErrIdentityExists) {
		user, getErr := refetch()
		if getErr != nil {
			return nil, false, apperrors.NewDatabaseError("refetch after insert race", getErr)
		}
		return user, false, nil
	}
	return nil, false, apperrors.NewDatabaseError("create user", err)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return user, nil
}

// UpdateProfile mutates the owner-editable fields only.
func (s *Service) UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	if update == nil || (update.Name == nil && update.AvatarURL == nil) {
		return nil, apperrors.NewValidationError("nothing to update")
	}
	user, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, apperrors.NewDatabaseError("update profile", err)
	}
	return user, nil
}

// randomSecret generates the opaque per-user secret stored alongside the
// placeholder identity. It is never returned to clients.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
