package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"airdrop-auth-backend/internal/features/user/models"
	"airdrop-auth-backend/internal/features/user/repository"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.UserRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, address, telegram_id, email, secret, name, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		nullString(user.Address),
		nullInt64(user.TelegramID),
		user.Email,
		user.Secret,
		nullString(user.Name),
		nullString(user.AvatarURL),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrIdentityExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *postgresRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	return r.getBy(ctx, "address = $1", address)
}

func (r *postgresRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.getBy(ctx, "telegram_id = $1", telegramID)
}

func (r *postgresRepository) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, address, telegram_id, email, secret, name, avatar_url, created_at, updated_at
		FROM users
		WHERE ` + where

	return scanUser(r.db.QueryRowContext(ctx, query, arg))
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, address, telegram_id, email, secret, name, avatar_url, created_at, updated_at
	`

	return scanUser(r.db.QueryRowContext(ctx, query, id, update.Name, update.AvatarURL))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var address, name, avatarURL sql.NullString
	var telegramID sql.NullInt64

	err := row.Scan(&user.ID, &address, &telegramID, &user.Email, &user.Secret,
		&name, &avatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Address = address.String
	user.TelegramID = telegramID.Int64
	user.Name = name.String
	user.AvatarURL = avatarURL.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
