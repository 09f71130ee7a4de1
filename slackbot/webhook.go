package slackbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-http-utils/headers"
)

// Notify posts a plain text message to the configured incoming webhook.
// A bot without a webhook URL silently skips notifications.
func (b *Bot) Notify(ctx context.Context, message string) error {
	if b.cfg.WebhookURL == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set(headers.ContentType, "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook notification failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook notification got HTTP %d: %s", resp.StatusCode, string(body))
	}
	slog.DebugContext(ctx, "Sent webhook notification")
	return nil
}
