package memory

import (
	"context"
	"sync"
	"time"

	"airdrop-auth-backend/internal/features/user/models"
	"airdrop-auth-backend/internal/features/user/repository"
)

// Repository is an in-memory UserRepository used in tests. It enforces the
// same uniqueness rules as the Postgres schema.
type Repository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewRepository() *Repository {
	return &Repository{users: make(map[string]*models.User)}
}

func (r *Repository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if user.Address != "" && existing.Address == user.Address {
			return repository.ErrIdentityExists
		}
		if user.TelegramID != 0 && existing.TelegramID == user.TelegramID {
			return repository.ErrIdentityExists
		}
	}

	stored := *user
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[user.ID] = &stored
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *Repository) GetByAddress(_ context.Context, address string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Address != "" && user.Address == address {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *Repository) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.TelegramID != 0 && user.TelegramID == telegramID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *Repository) UpdateProfile(_ context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

// Count reports the number of stored users, for duplicate assertions.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
