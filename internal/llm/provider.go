package llm

import "context"

const (
	DefaultModel     = "default"
	DefaultMaxTokens = 500
	DefaultAPIType   = "openai"
)

// APIType selects the request dialect spoken to the provider.
type APIType int

const (
	APIGeneric APIType = iota
	APIOpenAI
	APIAnthropic
)

// ParseAPIType maps a configuration string to an APIType. Tags match
// exactly: anything other than "openai" or "anthropic", including "OpenAI",
// is treated as generic.
func ParseAPIType(s string) APIType {
	switch s {
	case "openai":
		return APIOpenAI
	case "anthropic":
		return APIAnthropic
	default:
		return APIGeneric
	}
}

func (t APIType) String() string {
	switch t {
	case APIOpenAI:
		return "openai"
	case APIAnthropic:
		return "anthropic"
	default:
		return "generic"
	}
}

// ProviderConfig describes one LLM endpoint. It is built fresh for every command.
type ProviderConfig struct {
	Endpoint  string
	APIKey    string
	Model     string
	MaxTokens int
	APIType   APIType
}

// WithDefaults fills the optional fields that were left empty.
func (c ProviderConfig) WithDefaults() ProviderConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// Transformer rewrites a message into its workplace-appropriate form.
type Transformer interface {
	Transform(ctx context.Context, text string) (string, error)
}

// Factory builds a Transformer for one invocation.
type Factory func(cfg ProviderConfig) Transformer
