package notify

import (
	"context"
	"net/http"

	"github.com/cenkalti/backoff/v5"

	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/platform/httpclient"
)

// WebhookSink hace POST del Envelope a una URL fija (push gateway, email relay, etc.).
type WebhookSink struct {
	client *httpclient.Client
	url    string
}

func NewWebhookSink(client *httpclient.Client, url string) *WebhookSink {
	return &WebhookSink{client: client, url: url}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Deliver marca como permanentes los errores que no vale la pena reintentar (4xx).
func (s *WebhookSink) Deliver(ctx context.Context, n notifications.Notification) error {
	headers := map[string]string{
		"X-Notification-ID": n.ID,
		"X-Event-Kind":      string(n.Kind),
	}
	err := s.client.DoJSON(ctx, http.MethodPost, s.url, headers, n.Envelope(), nil)
	if err != nil && !httpclient.IsTemporary(err) {
		return backoff.Permanent(err)
	}
	return err
}
