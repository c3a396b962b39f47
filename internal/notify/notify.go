// Package notify tells the user about warning insights outside the app.
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
	"unicode/utf8"

	"github.com/gen2brain/beeep"

	"github.com/MrJamesThe3rd/getrich/internal/insight"
)

const maxMessage = 800

type Config struct {
	AppName    string
	Desktop    bool
	WebhookURL string
}

// Notifier delivers warning insights as desktop notifications and, when a
// webhook is configured, as a JSON POST.
type Notifier struct {
	cfg     Config
	client  *http.Client
	desktop func(title, message string) error
	now     func() time.Time
}

type Option func(*Notifier)

func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// WithDesktop replaces the desktop notification call.
func WithDesktop(fn func(title, message string) error) Option {
	return func(n *Notifier) { n.desktop = fn }
}

func New(cfg Config, opts ...Option) *Notifier {
	if cfg.AppName == "" {
		cfg.AppName = "Get Rich"
	}

	n := &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
		desktop: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

type webhookPayload struct {
	App       string `json:"app"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// Notify sends every warning in insights. Other types are ignored.
func (n *Notifier) Notify(ctx context.Context, insights []insight.Insight) {
	for _, in := range insights {
		if in.Type != insight.TypeWarning {
			continue
		}

		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = n.cfg.AppName
		}

		message := truncate(strings.TrimSpace(in.Content), maxMessage)

		if n.cfg.Desktop {
			if err := n.desktop(title, message); err != nil {
				slog.Warn("desktop notification failed", "error", err)
			}
		}

		if n.cfg.WebhookURL != "" {
			err := n.post(ctx, webhookPayload{
				App:       n.cfg.AppName,
				Title:     title,
				Message:   message,
				Type:      string(in.Type),
				Timestamp: n.now().Unix(),
			})
			if err != nil {
				slog.Warn("webhook notification failed", "error", err)
			}
		}
	}
}

// truncate keeps at most limit runes of s.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	return string([]rune(s)[:limit]) + "..."
}

func (n *Notifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}

	return nil
}
