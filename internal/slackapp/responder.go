// Package slackapp connects the command handler to Slack: it delivers
// replies through response_url and runs the Socket Mode event loop.
package slackapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/mlorentedev/makenice/internal/command"
)

// Responder delivers a command reply to Slack.
type Responder interface {
	Respond(ctx context.Context, responseURL string, resp command.Response) error
}

// WebhookResponder posts replies to the slash command's response_url.
type WebhookResponder struct {
	Client *http.Client
}

// NewWebhookResponder returns a responder with a short delivery timeout.
func NewWebhookResponder() *WebhookResponder {
	return &WebhookResponder{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *WebhookResponder) Respond(ctx context.Context, responseURL string, resp command.Response) error {
	if responseURL == "" {
		return fmt.Errorf("slack: respond: empty response_url")
	}
	msg := &slack.WebhookMessage{
		ResponseType: responseType(resp),
		Text:         resp.Text,
	}
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, client, msg); err != nil {
		return fmt.Errorf("slack: respond: %w", err)
	}
	return nil
}

func responseType(resp command.Response) string {
	if resp.Public() {
		return slack.ResponseTypeInChannel
	}
	return slack.ResponseTypeEphemeral
}
