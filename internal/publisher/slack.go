package publisher

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	slackgo "github.com/slack-go/slack"
)

// Slack posts each batch as the text of a Slack incoming-webhook message.
// Batches are sent verbatim and must be UTF-8 text: the webhook payload is
// JSON, which would replace invalid bytes with U+FFFD.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack publisher. client may be nil.
func NewSlack(webhookURL string, client *http.Client) (*Slack, error) {
	if webhookURL == "" {
		return nil, ErrEmptyURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Slack{webhookURL: webhookURL, client: client}, nil
}

func (s *Slack) Publish(ctx context.Context, batch []byte) error {
	if !utf8.Valid(batch) {
		return ErrNotText
	}
	msg := &slackgo.WebhookMessage{Text: string(batch)}
	if err := slackgo.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
