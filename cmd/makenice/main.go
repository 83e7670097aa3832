package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlorentedev/makenice/internal/command"
	"github.com/mlorentedev/makenice/internal/config"
	"github.com/mlorentedev/makenice/internal/llm"
	"github.com/mlorentedev/makenice/internal/logging"
)

const mockDelay = 500 * time.Millisecond

type rootOptions struct {
	configPath string
	envFile    string
	useMock    bool
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "makenice",
		Short: "Slack /make-nice command server",
		Long: `makenice rewrites blunt messages into polite, professional ones.
It serves the Slack /make-nice slash command over HTTP (and Socket Mode when
SLACK_APP_TOKEN is set) and forwards each message to a configurable LLM API.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file (default: ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&opts.useMock, "mock", false, "use the mock LLM client instead of a real backend")

	serveCmd := newServeCmd(opts)
	rootCmd.AddCommand(serveCmd, newRewriteCmd(opts), newBenchCmd(opts))
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads env files, configuration, and logging shared by every subcommand.
func (o *rootOptions) setup() (config.Config, *slog.Logger, io.Closer, error) {
	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, nil, nil, err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("logging: %w", err)
	}
	return cfg, logger, closer, nil
}

func (o *rootOptions) commandHandler(cfg config.Config, logger *slog.Logger) *command.Handler {
	var factory llm.Factory = llm.NewTransformer
	if o.useMock {
		factory = llm.NewMockFactory(mockDelay)
		logger.Info("mode: mock llm client enabled")
	}
	return &command.Handler{
		Name:      cfg.Command,
		Provider:  cfg.Provider,
		NewClient: factory,
		Logger:    logger,
	}
}
