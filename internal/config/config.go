package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mlorentedev/makenice/internal/llm"
)

// Config holds process-wide settings. It is built once at startup.
type Config struct {
	Port               int       `yaml:"port"`
	Command            string    `yaml:"command"`
	SlackBotToken      string    `yaml:"slack_bot_token"`
	SlackSigningSecret string    `yaml:"slack_signing_secret"`
	SlackAppToken      string    `yaml:"slack_app_token"`
	Log                LogConfig `yaml:"log"`
	LLM                LLMConfig `yaml:"llm"`
}

// LogConfig controls the slog handler and optional rotated log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// LLMConfig provides file-level fallbacks for the LLM_* environment variables.
type LLMConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	APIType   string `yaml:"api_type"`
}

func defaults() Config {
	return Config{
		Port:    8090,
		Command: "/make-nice",
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. A missing
// default .env file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("config: load env file: %w", err)
	}
	return nil
}

// Load loads configuration from a YAML file (if path is non-empty),
// then applies environment variable overrides. An empty path returns defaults + env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if v := os.Getenv("MAKENICE_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid MAKENICE_PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("MAKENICE_COMMAND"); v != "" {
		cfg.Command = v
	}
	if v := os.Getenv("MAKENICE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MAKENICE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MAKENICE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		cfg.SlackBotToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		cfg.SlackSigningSecret = v
	}
	if v := os.Getenv("SLACK_APP_TOKEN"); v != "" {
		cfg.SlackAppToken = v
	}

	if !strings.HasPrefix(cfg.Command, "/") {
		cfg.Command = "/" + cfg.Command
	}

	return cfg, nil
}

// SocketMode reports whether an app-level token enables Socket Mode.
func (c Config) SocketMode() bool {
	return c.SlackAppToken != ""
}

// Provider builds the LLM settings for a single command. The LLM_* variables
// are read on every call so a changed environment applies to the next command.
func (c Config) Provider() (llm.ProviderConfig, error) {
	endpoint := envOr("LLM_API_ENDPOINT", c.LLM.Endpoint)
	apiKey := envOr("LLM_API_KEY", c.LLM.APIKey)
	model := envOr("LLM_MODEL", c.LLM.Model)
	apiType := envOr("LLM_API_TYPE", c.LLM.APIType)
	if apiType == "" {
		apiType = llm.DefaultAPIType
	}

	maxTokens := c.LLM.MaxTokens
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return llm.ProviderConfig{}, fmt.Errorf("invalid LLM_MAX_TOKENS %q: must be an integer", v)
		}
		if n <= 0 {
			return llm.ProviderConfig{}, fmt.Errorf("invalid LLM_MAX_TOKENS %q: must be positive", v)
		}
		maxTokens = n
	}

	return llm.ProviderConfig{
		Endpoint:  endpoint,
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: maxTokens,
		APIType:   llm.ParseAPIType(apiType),
	}.WithDefaults(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
