package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/slack-go/slack"
)

// SlackSignature verifies the X-Slack-Signature header against the signing
// secret. If secret is empty the middleware is a no-op, which is the case in
// Socket Mode. /api/health and /metrics are exempt.
func SlackSignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || isExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			sv, err := slack.NewSecretsVerifier(r.Header, secret)
			if err != nil {
				writeUnauthorized(w, "missing or stale signature")
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				var maxBytesErr *http.MaxBytesError
				if errors.As(err, &maxBytesErr) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					json.NewEncoder(w).Encode(map[string]string{"error": "request body too large"})
					return
				}
				writeUnauthorized(w, "unreadable body")
				return
			}

			sv.Write(body)
			if err := sv.Ensure(); err != nil {
				writeUnauthorized(w, "invalid signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func isExempt(path string) bool {
	return path == "/api/health" || path == "/metrics"
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
