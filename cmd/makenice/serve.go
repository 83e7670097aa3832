package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mlorentedev/makenice/internal/server"
	"github.com/mlorentedev/makenice/internal/slackapp"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port     int
		insecure bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the slash command server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := opts.setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			if port > 0 {
				cfg.Port = port
			}

			commands := opts.commandHandler(cfg, logger)
			responder := slackapp.NewWebhookResponder()

			httpOpts := server.Options{
				SigningSecret: cfg.SlackSigningSecret,
				SocketMode:    cfg.SocketMode(),
				AllowUnsigned: insecure || opts.useMock,
			}
			switch {
			case cfg.SlackSigningSecret != "":
				logger.Info("auth: slack request signatures required")
			case httpOpts.AllowUnsigned:
				logger.Warn("auth: accepting unsigned slash commands (--insecure or --mock)")
			default:
				logger.Warn("auth: no SLACK_SIGNING_SECRET, HTTP slash command route not mounted")
			}
			if provider, err := cfg.Provider(); err != nil {
				logger.Warn("llm config invalid", "error", err)
			} else if provider.Endpoint == "" {
				logger.Warn("llm: LLM_API_ENDPOINT not set, commands will report a configuration error")
			}

			addr := fmt.Sprintf(":%d", cfg.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.SetupMux(commands, responder, httpOpts),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("makenice listening", "addr", addr, "command", cfg.Command)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			})

			if cfg.SocketMode() {
				runner := &slackapp.SocketRunner{
					Client:    slackapp.NewSocketClient(cfg.SlackBotToken, cfg.SlackAppToken),
					Commands:  commands,
					Responder: responder,
					Logger:    logger,
				}
				g.Go(func() error {
					logger.Info("socketmode: enabled")
					return runner.Run(gctx)
				})
			}

			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				logger.Info("server stopped")
				return nil
			})

			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override listen port")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "serve /slack/commands without SLACK_SIGNING_SECRET (development only)")
	return cmd
}
