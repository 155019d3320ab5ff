// Package notify delivers operator notifications about task progress.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"github.com/sellerops/ozon-supply-connector/internal/app/supply"
	"go.uber.org/zap"
)

// NewNotifier picks the webhook notifier when a URL is configured and falls
// back to plain log output otherwise.
func NewNotifier(cfg *config.Config) supply.Notifier {
	if cfg.NotifyWebhookURL != "" {
		return NewWebhookNotifier(cfg)
	}
	return NewLogNotifier()
}

// WebhookNotifierImpl posts notifications as JSON to a configured webhook.
type WebhookNotifierImpl struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(cfg *config.Config) *WebhookNotifierImpl {
	return &WebhookNotifierImpl{
		url: cfg.NotifyWebhookURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.APITimeoutSeconds) * time.Second,
		},
	}
}

type webhookMessage struct {
	ChatID   int64  `json:"chat_id"`
	Text     string `json:"text"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

func (n *WebhookNotifierImpl) NotifyText(ctx context.Context, chatID int64, text string) error {
	return n.send(ctx, webhookMessage{ChatID: chatID, Text: text})
}

// NotifyFile announces a generated file. The webhook receives the file name
// and size, not the bytes; the file stays in the data directory.
func (n *WebhookNotifierImpl) NotifyFile(ctx context.Context, chatID int64, path string, caption string) error {
	msg := webhookMessage{ChatID: chatID, Text: caption, FileName: filepath.Base(path)}
	if fi, err := os.Stat(path); err == nil {
		msg.FileSize = fi.Size()
	}
	return n.send(ctx, msg)
}

func (n *WebhookNotifierImpl) send(ctx context.Context, msg webhookMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}

// LogNotifierImpl writes notifications to the log. Used when no webhook is
// configured.
type LogNotifierImpl struct{}

func NewLogNotifier() *LogNotifierImpl {
	return &LogNotifierImpl{}
}

func (n *LogNotifierImpl) NotifyText(_ context.Context, chatID int64, text string) error {
	zap.L().Info("notification", zap.Int64("chat", chatID), zap.String("text", text))
	return nil
}

func (n *LogNotifierImpl) NotifyFile(_ context.Context, chatID int64, path string, caption string) error {
	zap.L().Info("notification file", zap.Int64("chat", chatID), zap.String("path", path), zap.String("caption", caption))
	return nil
}
