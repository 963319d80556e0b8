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
	"net/url"
	"strings"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/logger"
	sessionmodels "airdrop-auth-backend/internal/features/session/models"
	sessionservice "airdrop-auth-backend/internal/features/session/service"
	"airdrop-auth-backend/internal/features/telegramauth/models"
	"airdrop-auth-backend/internal/features/telegramauth/repository"
	usermodels "airdrop-auth-backend/internal/features/user/models"
	"airdrop-auth-backend/internal/platform/telegram"
)

const PurposeTelegramLogin = "telegram-login"

// Mini-app init data older than this is rejected.
const initDataMaxAge = time.Hour

type UserResolver interface {
	ResolveByTelegramID(ctx context.Context, telegramID int64) (*usermodels.User, bool, error)
	UpdateProfile(ctx context.Context, id string, update *usermodels.ProfileUpdate) (*usermodels.User, error)
}

type SessionIssuer interface {
	Issue(ctx context.Context, user *usermodels.User, method string) (*sessionmodels.Session, error)
}

type Config struct {
	BotToken        string
	SiteURL         string
	TokenTTL        time.Duration
	TokenHashSecret string
}

// Service ferries a login token from the browser to a Telegram chat and
// back: RequestLogin pushes a deep-link button through the bot, and
// CompleteLogin exchanges the token for a session.
type Service struct {
	tokens     repository.TokenStore
	users      UserResolver
	sessions   SessionIssuer
	bot        *telegram.Client
	botToken   string
	siteURL    string
	ttl        time.Duration
	hashSecret []byte
	clock      func() time.Time
}

func NewService(tokens repository.TokenStore, users UserResolver, sessions SessionIssuer, bot *telegram.Client, cfg Config) *Service {
	return &Service{
		tokens:     tokens,
		users:      users,
		sessions:   sessions,
		bot:        bot,
		botToken:   cfg.BotToken,
		siteURL:    strings.TrimRight(cfg.SiteURL, "/"),
		ttl:        cfg.TokenTTL,
		hashSecret: []byte(cfg.TokenHashSecret),
		clock:      time.Now,
	}
}

// RequestLogin creates a one-time token and pushes a login button with the
// embedded deep link to the user's chat.
func (s *Service) RequestLogin(ctx context.Context, telegramID int64) error {
	if telegramID <= 0 {
		return apperrors.NewValidationError("telegram_id is required")
	}
	if !s.bot.Configured() {
		return apperrors.NewConfigurationError("BOT_TOKEN is not set")
	}

	raw, err := generateToken()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate login token")
	}

	record := &models.TokenRecord{
		TelegramID: telegramID,
		Purpose:    PurposeTelegramLogin,
		ExpiresAt:  s.clock().Add(s.ttl),
	}
	// Retention runs past the logical expiry so a late verify attempt can
	// be answered with "expired" rather than "unknown token".
	if err := s.tokens.Save(ctx, s.hashToken(raw), record, 2*s.ttl); err != nil {
		return apperrors.NewDatabaseError("save login token", err)
	}

	link := fmt.Sprintf("%s/auth/telegram?token=%s", s.siteURL, url.QueryEscape(raw))
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Log in to AFA Web3Tool", WebApp: &telegram.WebAppInfo{URL: link}},
		}},
	}
	text := fmt.Sprintf("Tap the button below to log in. The link expires in %d minutes.", int(s.ttl.Minutes()))
	if err := s.bot.SendMessage(ctx, telegramID, text, markup); err != nil {
		return apperrors.NewUpstreamError("telegram bot API", err)
	}
	return nil
}

// CompleteLogin consumes the token and mints a session for the Telegram id
// it was issued to. Consumption is terminal either way: an expired token is
// deleted and reported expired, a repeated attempt sees "not found".
func (s *Service) CompleteLogin(ctx context.Context, rawToken string) (*sessionmodels.Session, error) {
	if rawToken == "" {
		return nil, apperrors.NewValidationError("token is required")
	}

	record, err := s.tokens.Consume(ctx, s.hashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apperrors.NewUnauthorizedError("login token not found or already used")
		}
		return nil, apperrors.NewDatabaseError("consume login token", err)
	}
	if record.Purpose != PurposeTelegramLogin {
		return nil, apperrors.NewUnauthorizedError("login token not found or already used")
	}
	if s.clock().After(record.ExpiresAt) {
		return nil, apperrors.New(apperrors.ErrCodeTokenExpired, "login token expired, restart the login from the chat")
	}

	user, created, err := s.users.ResolveByTelegramID(ctx, record.TelegramID)
	if err != nil {
		return nil, err
	}
	if created {
		user = s.enrichProfile(ctx, user)
	}
	return s.sessions.Issue(ctx, user, sessionservice.MethodTelegram)
}

// MiniAppLogin validates Telegram Mini App init data and mints a session
// for the embedded user, creating the identity on first sight.
func (s *Service) MiniAppLogin(ctx context.Context, rawInitData string) (*sessionmodels.Session, error) {
	if rawInitData == "" {
		return nil, apperrors.NewValidationError("init_data is required")
	}
	if s.botToken == "" {
		return nil, apperrors.NewConfigurationError("BOT_TOKEN is not set")
	}

	if err := initdata.Validate(rawInitData, s.botToken, initDataMaxAge); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid init data")
	}
	parsed, err := initdata.Parse(rawInitData)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "malformed init data")
	}
	if parsed.User.ID == 0 {
		return nil, apperrors.NewValidationError("init data has no user")
	}

	user, created, err := s.users.ResolveByTelegramID(ctx, parsed.User.ID)
	if err != nil {
		return nil, err
	}
	if created {
		name := strings.TrimSpace(parsed.User.FirstName + " " + parsed.User.LastName)
		update := &usermodels.ProfileUpdate{}
		if name != "" {
			update.Name = &name
		}
		if parsed.User.PhotoURL != "" {
			photo := parsed.User.PhotoURL
			update.AvatarURL = &photo
		}
		if update.Name != nil || update.AvatarURL != nil {
			if updated, uerr := s.users.UpdateProfile(ctx, user.ID, update); uerr == nil {
				user = updated
			}
		}
	}
	return s.sessions.Issue(ctx, user, sessionservice.MethodTelegram)
}

// HandleUpdate reacts to webhook events from the bot. A /start carrying a
// deep-link payload answers with a fresh login button, a bare /start gets
// a greeting, anything else is ignored.
func (s *Service) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil
	}
	fields := strings.Fields(update.Message.Text)
	if len(fields) == 0 {
		return nil
	}
	// Group chats address commands as /start@BotName.
	if command, _, _ := strings.Cut(fields[0], "@"); command != "/start" {
		return nil
	}
	if len(fields) == 1 {
		greeting := "Welcome to AFA Web3Tool! Open the site and choose Telegram login, " +
			"or send /start login to get a login button right here."
		if err := s.bot.SendMessage(ctx, update.Message.From.ID, greeting, nil); err != nil {
			return apperrors.NewUpstreamError("telegram bot API", err)
		}
		return nil
	}
	return s.RequestLogin(ctx, update.Message.From.ID)
}

// enrichProfile fills the display name and avatar from the bot API on first
// login. Best effort: a bot API failure only costs the profile fields.
func (s *Service) enrichProfile(ctx context.Context, user *usermodels.User) *usermodels.User {
	update := &usermodels.ProfileUpdate{}

	if chat, err := s.bot.GetChat(ctx, user.TelegramID); err == nil {
		name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
		if name == "" {
			name = chat.Username
		}
		if name != "" {
			update.Name = &name
		}
	} else {
		logger.Warn().Err(err).Int64("telegram_id", user.TelegramID).Msg("getChat failed")
	}

	if avatarURL, err := s.bot.GetAvatarURL(ctx, user.TelegramID); err == nil && avatarURL != "" {
		update.AvatarURL = &avatarURL
	} else if err != nil {
		logger.Warn().Err(err).Int64("telegram_id", user.TelegramID).Msg("avatar lookup failed")
	}

	if update.Name == nil && update.AvatarURL == nil {
		return user
	}
	updated, err := s.users.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("profile enrichment failed")
		return user
	}
	return updated
}

func (s *Service) hashToken(token string) string {
	mac := hmac.New(sha256.New, s.hashSecret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
