package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/features/session/models"
	"airdrop-auth-backend/internal/features/session/repository"
	usermodels "airdrop-auth-backend/internal/features/user/models"
)

// Login methods. The method decides the access-token lifetime, both at
// initial issue and on every refresh.
const (
	MethodWallet   = "wallet"
	MethodTelegram = "telegram"
)

// Claims are the JWT claims carried by every access token. Role and
// audience are fixed to what the data-store API expects from an
// authenticated session.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	Address    string `json:"address,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	Method     string `json:"login_method,omitempty"`
}

// UserLoader is the slice of the user service the minter needs.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*usermodels.User, error)
}

type Config struct {
	JWTSecret       string
	TokenHashSecret string
	WalletTTL       time.Duration
	TelegramTTL     time.Duration
	RefreshTTL      time.Duration
}

// Service mints, refreshes and parses application sessions. Tokens are
// stateless HS256 JWTs; refresh tokens are opaque, stored hashed and
// redeemable once.
type Service struct {
	users      UserLoader
	refresh    repository.RefreshStore
	secret     []byte
	hashSecret []byte
	cfg        Config
	clock      func() time.Time
}

func NewService(users UserLoader, refresh repository.RefreshStore, cfg Config) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if cfg.TokenHashSecret == "" {
		return nil, fmt.Errorf("token hash secret is required")
	}
	return &Service{
		users:      users,
		refresh:    refresh,
		secret:     []byte(cfg.JWTSecret),
		hashSecret: []byte(cfg.TokenHashSecret),
		cfg:        cfg,
		clock:      time.Now,
	}, nil
}

// Issue mints a session for the user. The TTL follows the login method:
// wallet sessions are long-lived, Telegram sessions are short.
func (s *Service) Issue(ctx context.Context, user *usermodels.User, method string) (*models.Session, error) {
	ttl, err := s.ttlFor(method)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:      user.Email,
		Role:       "authenticated",
		Address:    user.Address,
		TelegramID: user.TelegramID,
		Method:     method,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to sign access token")
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate refresh token")
	}
	grant := &models.RefreshGrant{UserID: user.ID, Method: method, IssuedAt: now}
	if err := s.refresh.Save(ctx, s.hashToken(refreshToken), grant, s.cfg.RefreshTTL); err != nil {
		return nil, apperrors.NewDatabaseError("save refresh grant", err)
	}

	return &models.Session{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(ttl.Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Refresh redeems a refresh token for a new session, rotating the token.
// A consumed or unknown token is a terminal authentication failure.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	if refreshToken == "" {
		return nil, apperrors.NewValidationError("refresh_token is required")
	}

	grant, err := s.refresh.Consume(ctx, s.hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrGrantNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid refresh token")
		}
		return nil, apperrors.NewDatabaseError("consume refresh grant", err)
	}

	user, err := s.users.GetByID(ctx, grant.UserID)
	if err != nil {
		return nil, err
	}
	return s.Issue(ctx, user, grant.Method)
}

// Parse validates an access token and returns its claims.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clock() }))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid access token")
	}
	if !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid access token")
	}
	return claims, nil
}

func (s *Service) ttlFor(method string) (time.Duration, error) {
	switch method {
	case MethodWallet:
		return s.cfg.WalletTTL, nil
	case MethodTelegram:
		return s.cfg.TelegramTTL, nil
	default:
		return 0, apperrors.NewConfigurationError(fmt.Sprintf("unknown login method %q", method))
	}
}

func (s *Service) hashToken(token string) string {
	mac := hmac.New(sha256.New, s.hashSecret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
