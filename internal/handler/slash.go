package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/mlorentedev/makenice/internal/command"
	"github.com/mlorentedev/makenice/internal/middleware"
	"github.com/mlorentedev/makenice/internal/slackapp"
)

// SlashCommand acknowledges a Slack slash command immediately and delivers
// the reply asynchronously through the command's response_url.
func SlashCommand(commands *command.Handler, responder slackapp.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid slash command payload")
			return
		}

		w.WriteHeader(http.StatusOK)

		ctx := context.WithoutCancel(r.Context())
		requestID := middleware.RequestIDFromContext(r.Context())
		go func() {
			resp := commands.Handle(ctx, cmd.Text)
			if err := responder.Respond(ctx, cmd.ResponseURL, resp); err != nil {
				slog.Error("deliver reply failed",
					"request_id", requestID,
					"command", cmd.Command,
					"channel_id", cmd.ChannelID,
					"error", err,
				)
			}
		}()
	}
}
