package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Telegram Bot API client covering the calls the login
// bridge needs: pushing messages with inline buttons and fetching the
// public profile of a user on first login.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

type Option func(*Client)

// WithBaseURL overrides the API host, used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		baseURL:    "https://api.telegram.org",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a bot token is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

type tgResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      T      `json:"result"`
}

// Chat mirrors the subset of the Bot API chat object we read.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// User mirrors the Bot API user object.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Message is the subset of the Bot API message object used by the webhook.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Update is a single webhook event pushed by the Bot API.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type WebAppInfo struct {
	URL string `json:"url"`
}

type InlineKeyboardButton struct {
	Text   string      `json:"text"`
	URL    string      `json:"url,omitempty"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type photoSize struct {
	FileID string `json:"file_id"`
}

type userProfilePhotos struct {
	TotalCount int           `json:"total_count"`
	Photos     [][]photoSize `json:"photos"`
}

type file struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// SendMessage pushes a text message, optionally with an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}
	if markup != nil {
		encoded, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("marshal reply markup: %w", err)
		}
		params.Set("reply_markup", string(encoded))
	}

	var result tgResponse[json.RawMessage]
	if err := c.makeRequest(ctx, http.MethodPost, "sendMessage", params, &result); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	if !result.Ok {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

// GetChat fetches the chat object for a user id. For private chats the Bot
// API returns the user's name fields on the chat itself.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	params := url.Values{"chat_id": {strconv.FormatInt(chatID, 10)}}

	var result tgResponse[Chat]
	if err := c.makeRequest(ctx, http.MethodGet, "getChat", params, &result); err != nil {
		return nil, fmt.Errorf("getChat: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("telegram API error: %s", result.Description)
	}
	return &result.Result, nil
}

// GetAvatarURL resolves a direct download URL for the user's newest profile
// photo, or "" when the user has none.
func (c *Client) GetAvatarURL(ctx context.Context, userID int64) (string, error) {
	params := url.Values{
		"user_id": {strconv.FormatInt(userID, 10)},
		"limit":   {"1"},
	}

	var photos tgResponse[userProfilePhotos]
	if err := c.makeRequest(ctx, http.MethodGet, "getUserProfilePhotos", params, &photos); err != nil {
		return "", fmt.Errorf("getUserProfilePhotos: %w", err)
	}
	if !photos.Ok {
		return "", fmt.Errorf("telegram API error: %s", photos.Description)
	}
	if photos.Result.TotalCount == 0 || len(photos.Result.Photos) == 0 || len(photos.Result.Photos[0]) == 0 {
		return "", nil
	}

	// The last size in the set is the largest.
	sizes := photos.Result.Photos[0]
	fileID := sizes[len(sizes)-1].FileID

	var f tgResponse[file]
	if err := c.makeRequest(ctx, http.MethodGet, "getFile", url.Values{"file_id": {fileID}}, &f); err != nil {
		return "", fmt.Errorf("getFile: %w", err)
	}
	if !f.Ok {
		return "", fmt.Errorf("telegram API error: %s", f.Description)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, f.Result.FilePath), nil
}

func (c *Client) makeRequest(ctx context.Context, method, apiMethod string, data url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, apiMethod)

	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(data.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(data) > 0 {
			endpoint = endpoint + "?" + data.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
