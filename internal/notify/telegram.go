package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mikesoares/linkwatch/internal/domain"
	"github.com/mikesoares/linkwatch/internal/netbind"
)

const telegramAPIBase = "https://api.telegram.org"

type TelegramConfig struct {
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Telegram delivers alerts through the Bot API sendMessage call,
// bound to the working interface when one is known.
type Telegram struct {
	cfg     TelegramConfig
	baseURL string
	log     *slog.Logger
}

func NewTelegram(cfg TelegramConfig, log *slog.Logger) *Telegram {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Telegram{cfg: cfg, baseURL: telegramAPIBase, log: log}
}

// WithBaseURL overrides the API host. Primarily useful for testing.
func (t *Telegram) WithBaseURL(baseURL string) *Telegram {
	t.baseURL = strings.TrimSuffix(baseURL, "/")
	return t
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error {
	return t.Send(ctx, DefaultSubject, FormatAlertBody(transitions), viaIface)
}

// Send posts one message. The Bot API answers 200 with "ok": false
// for application errors (bad token, unknown chat, Markdown parse
// failures), so the response body is validated, not just the status.
func (t *Telegram) Send(ctx context.Context, subject, body, iface string) error {
	payload := map[string]string{
		"chat_id":    t.cfg.ChatID,
		"text":       fmt.Sprintf("*%s*\n%s", subject, body),
		"parse_mode": "Markdown",
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := netbind.HTTPClient(iface, t.cfg.Timeout)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute telegram request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("telegram api status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode telegram response: %w", err)
	}

	if !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram api error: %s", result.Description)
		}
		return fmt.Errorf("telegram api error: status %d", resp.StatusCode)
	}

	return nil
}
