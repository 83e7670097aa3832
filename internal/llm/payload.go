package llm

import "net/http"

const anthropicVersion = "2023-06-01"

const openAITemperature = 0.7

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type genericRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// BuildPrompt wraps the user's message in the rewrite instruction.
func BuildPrompt(message string) string {
	return "You are a professional workplace communication assistant. \n" +
		"Transform the following message to be work-appropriate, professional, and well-formatted. \n" +
		"Preserve the original intent but make it suitable for a workplace environment. \n" +
		"Return ONLY the improved message without any additional commentary.\n" +
		"\n" +
		"Original message: " + message + "\n" +
		"\n" +
		"Improved message:"
}

func buildPayload(cfg ProviderConfig, prompt string) any {
	switch cfg.APIType {
	case APIOpenAI:
		return buildOpenAIPayload(cfg, prompt)
	case APIAnthropic:
		return buildAnthropicPayload(cfg, prompt)
	default:
		return buildGenericPayload(cfg, prompt)
	}
}

func buildOpenAIPayload(cfg ProviderConfig, prompt string) openAIRequest {
	return openAIRequest{
		Model:       cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: openAITemperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

func buildAnthropicPayload(cfg ProviderConfig, prompt string) anthropicRequest {
	return anthropicRequest{
		Model:     cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: cfg.MaxTokens,
	}
}

func buildGenericPayload(cfg ProviderConfig, prompt string) genericRequest {
	return genericRequest{
		Model:     cfg.Model,
		Prompt:    prompt,
		MaxTokens: cfg.MaxTokens,
	}
}

func buildHeaders(cfg ProviderConfig) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	if cfg.APIKey == "" {
		return h
	}
	if cfg.APIType == APIAnthropic {
		h.Set("x-api-key", cfg.APIKey)
		h.Set("anthropic-version", anthropicVersion)
	} else {
		h.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return h
}
