package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// DefaultAPIURL is the public Telegram Bot API host
const DefaultAPIURL = "https://api.telegram.org"

// Sender delivers notifications through the Telegram Bot API sendMessage method.
// It implements domain.NotificationSender.
type Sender struct {
	apiURL string
	token  string
	client *http.Client
	log    zerolog.Logger
}

// NewSender creates a new Telegram sender. An empty token leaves the sender unavailable.
func NewSender(apiURL, token string, log zerolog.Logger) *Sender {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Sender{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("client", "telegram").Logger(),
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Available reports whether a bot token is configured
func (s *Sender) Available() bool {
	return strings.TrimSpace(s.token) != ""
}

// Send posts the message as Markdown to its chat
func (s *Sender) Send(ctx context.Context, message *domain.NotificationMessage) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    int64(message.ChatID),
		Text:      message.FormatForTelegram(),
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// the request URL carries the token; keep it out of logs and errors
		return fmt.Errorf("failed to call telegram: %w", redact(err, s.token))
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse telegram response (status %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram rejected message (code %d): %s", result.ErrorCode, result.Description)
	}

	s.log.Info().
		Str("chat_id", message.ChatID.String()).
		Str("title", message.Title).
		Str("priority", string(message.Priority)).
		Msg("Notification sent")

	return nil
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}
