package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlorentedev/makenice/internal/command"
	"github.com/mlorentedev/makenice/internal/handler"
	"github.com/mlorentedev/makenice/internal/middleware"
	"github.com/mlorentedev/makenice/internal/slackapp"
)

// Options carries what the HTTP surface needs from process configuration.
type Options struct {
	SigningSecret string
	SocketMode    bool
	// AllowUnsigned mounts the slash command route without a signing secret.
	// Only for local development and mock mode.
	AllowUnsigned bool
}

// SlashEnabled reports whether /slack/commands is served.
func (o Options) SlashEnabled() bool {
	return o.SigningSecret != "" || o.AllowUnsigned
}

// SetupMux wires handlers with the full middleware chain. Without a signing
// secret the slash command route is left unmounted unless AllowUnsigned is set.
func SetupMux(commands *command.Handler, responder slackapp.Responder, opts Options) http.Handler {
	mux := http.NewServeMux()
	if opts.SlashEnabled() {
		mux.HandleFunc("/slack/commands", handler.SlashCommand(commands, responder))
	} else {
		slog.Warn("http: /slack/commands disabled, set SLACK_SIGNING_SECRET or run with --insecure")
	}
	mux.HandleFunc("/api/health", handler.Health(commands.Provider, opts.SocketMode))
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.Chain(mux, opts.SigningSecret)
}
