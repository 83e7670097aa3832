package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockClient returns simulated rewrites with a configurable delay.
// Used for development and testing without a real LLM backend.
type MockClient struct {
	Delay time.Duration
}

// NewMockFactory returns a Factory that ignores the provider config.
func NewMockFactory(delay time.Duration) Factory {
	return func(ProviderConfig) Transformer {
		return &MockClient{Delay: delay}
	}
}

func (m *MockClient) Transform(ctx context.Context, text string) (string, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", fmt.Errorf("mock: %w", ctx.Err())
		}
	}

	out := strings.TrimSpace(text)
	if len(out) > 0 && out[0] >= 'a' && out[0] <= 'z' {
		out = strings.ToUpper(out[:1]) + out[1:]
	}
	return out, nil
}
