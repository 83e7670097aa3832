package slackapp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/mlorentedev/makenice/internal/command"
	"github.com/mlorentedev/makenice/internal/metrics"
)

type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// SocketRunner receives slash commands over a Socket Mode connection.
type SocketRunner struct {
	Client    *socketmode.Client
	Commands  *command.Handler
	Responder Responder
	Logger    *slog.Logger
}

// NewSocketClient builds a Socket Mode client from the bot and app-level tokens.
func NewSocketClient(botToken, appToken string) *socketmode.Client {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return socketmode.New(api)
}

// Run blocks until ctx is cancelled or the connection fails permanently.
func (s *SocketRunner) Run(ctx context.Context) error {
	go s.loop(ctx)
	if err := s.Client.RunContext(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("socketmode: %w", err)
	}
	return nil
}

func (s *SocketRunner) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-s.Client.Events:
			if !ok {
				return
			}
			s.handleEvent(ctx, evt, s.Client)
		}
	}
}

func (s *SocketRunner) handleEvent(ctx context.Context, evt socketmode.Event, a acker) {
	log := s.logger()
	metrics.SocketEvents.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Info("socketmode: connecting")
	case socketmode.EventTypeConnected:
		log.Info("socketmode: connected")
	case socketmode.EventTypeConnectionError:
		log.Error("socketmode: connection error", "error", fmt.Sprint(evt.Data))
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if evt.Request != nil {
			a.Ack(*evt.Request)
		}
		if !ok {
			log.Error("socketmode: unexpected slash command payload", "type", fmt.Sprintf("%T", evt.Data))
			return
		}
		go s.dispatch(context.WithoutCancel(ctx), cmd)
	default:
		if evt.Request != nil {
			a.Ack(*evt.Request)
		}
	}
}

func (s *SocketRunner) dispatch(ctx context.Context, cmd slack.SlashCommand) {
	resp := s.Commands.Handle(ctx, cmd.Text)
	if err := s.Responder.Respond(ctx, cmd.ResponseURL, resp); err != nil {
		s.logger().Error("deliver reply failed",
			"command", cmd.Command,
			"channel_id", cmd.ChannelID,
			"error", err,
		)
	}
}

func (s *SocketRunner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
