package handler

import (
	"net/http"

	"github.com/mlorentedev/makenice/internal/command"
)

type providerStatus struct {
	Configured bool   `json:"configured"`
	APIType    string `json:"api_type,omitempty"`
	Model      string `json:"model,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status     string         `json:"status"`
	Provider   providerStatus `json:"provider"`
	SocketMode bool           `json:"socket_mode"`
}

// Health reports whether an LLM provider is configured. It never calls the provider.
func Health(provider command.ProviderSource, socketMode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:     "ok",
			Provider:   providerHealth(provider),
			SocketMode: socketMode,
		})
	}
}

func providerHealth(provider command.ProviderSource) providerStatus {
	cfg, err := provider()
	if err != nil {
		return providerStatus{Reason: err.Error()}
	}
	s := providerStatus{
		Configured: cfg.Endpoint != "",
		APIType:    cfg.APIType.String(),
		Model:      cfg.Model,
	}
	if !s.Configured {
		s.Reason = "LLM_API_ENDPOINT not set"
	}
	return s
}
