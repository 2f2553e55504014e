// Package telegram delivers the rendered report over the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"sectorpulse/internal/errors"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultHTTPTimeout = 10 * time.Second
	maxBodyBytes       = 1 << 20
)

// Client sends messages through one bot to one chat.
type Client struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API host. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a delivery client for the given bot token and chat.
func NewClient(token, chatID string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts one HTML-formatted message to the configured chat.
func (c *Client) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	form := url.Values{
		"chat_id":    {c.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return errors.NewDeliveryError("build telegram request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewDeliveryError("telegram request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.NewDeliveryError("read telegram response", err)
	}

	// The API reports failures both via status code and the "ok" flag.
	if resp.StatusCode != http.StatusOK || !gjson.GetBytes(body, "ok").Bool() {
		desc := gjson.GetBytes(body, "description").String()
		return errors.NewDeliveryError("telegram rejected message", nil).
			WithContext("status", resp.StatusCode).
			WithContext("description", desc)
	}

	c.logger.InfoContext(ctx, "report delivered",
		slog.Int("payload_bytes", len(text)))
	return nil
}
