// Package command turns slash command text into the reply shown in Slack.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mlorentedev/makenice/internal/llm"
	"github.com/mlorentedev/makenice/internal/metrics"
)

// DefaultName is the slash command registered in the Slack app.
const DefaultName = "/make-nice"

const (
	ResponseEphemeral = "ephemeral"
	ResponseInChannel = "in_channel"
)

const (
	errorPrefix       = "Sorry, I encountered an error processing your message. "
	configErrorPrefix = "Configuration error: "
	logPreviewChars   = 50
)

// Response is the reply delivered back to the channel.
type Response struct {
	ResponseType string
	Text         string
}

// Public reports whether the whole channel sees the reply.
func (r Response) Public() bool {
	return r.ResponseType == ResponseInChannel
}

// ProviderSource builds the provider settings for one invocation.
type ProviderSource func() (llm.ProviderConfig, error)

// Handler runs one slash command end to end.
type Handler struct {
	Name      string
	Provider  ProviderSource
	NewClient llm.Factory
	Logger    *slog.Logger
}

// Handle produces exactly one Response for text. It never panics on
// provider failures; every failure becomes an ephemeral reply.
func (h *Handler) Handle(ctx context.Context, text string) Response {
	log := h.logger().With("invocation_id", uuid.NewString())

	if strings.TrimSpace(text) == "" {
		metrics.CommandsTotal.WithLabelValues("usage").Inc()
		return Response{
			ResponseType: ResponseEphemeral,
			Text:         fmt.Sprintf("Please provide a message to make nice. Usage: `%s <your message>`", h.name()),
		}
	}

	cfg, err := h.Provider()
	if err != nil {
		return h.fail(log, err, llm.KindConfig)
	}

	log.Info("llm config",
		"endpoint", cfg.Endpoint,
		"api_type", cfg.APIType.String(),
		"model", cfg.Model,
	)
	log.Info("transforming message", "preview", preview(text, logPreviewChars))
	metrics.InputChars.Observe(float64(utf8.RuneCountInString(text)))

	start := time.Now()
	improved, err := h.NewClient(cfg).Transform(ctx, text)
	metrics.TransformDuration.WithLabelValues(cfg.APIType.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		return h.fail(log, err, llm.KindOf(err))
	}

	metrics.CommandsTotal.WithLabelValues("success").Inc()
	return Response{ResponseType: ResponseInChannel, Text: improved}
}

func (h *Handler) fail(log *slog.Logger, err error, kind llm.Kind) Response {
	metrics.CommandsTotal.WithLabelValues(kind.String()).Inc()

	var msg string
	switch kind {
	case llm.KindConfig:
		msg = configErrorPrefix + err.Error()
		log.Error("make-nice command failed", "kind", kind.String(), "error", msg)
	case llm.KindConnectivity, llm.KindUpstream:
		msg = errorPrefix + err.Error()
		log.Error("make-nice command failed", "kind", kind.String(), "error", msg)
	default:
		msg = errorPrefix + err.Error()
		log.Error("make-nice command failed",
			"kind", kind.String(),
			"error", msg,
			"stack", string(debug.Stack()),
		)
	}

	return Response{ResponseType: ResponseEphemeral, Text: msg}
}

func (h *Handler) name() string {
	if h.Name == "" {
		return DefaultName
	}
	return h.Name
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// preview returns at most n runes of s, marking truncation with an ellipsis.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
