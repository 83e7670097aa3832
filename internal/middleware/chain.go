package middleware

import (
	"net/http"
	"time"
)

// Chain wraps the handler with the full middleware stack.
// Order: RequestID → Logging → Metrics → MaxBytes → SlackSignature → Timeout → mux
// Slack expects the slash command ack within 3 seconds.
func Chain(handler http.Handler, signingSecret string) http.Handler {
	h := handler
	h = http.TimeoutHandler(h, 3*time.Second, `{"error":"request timeout"}`)
	h = SlackSignature(signingSecret)(h)
	h = MaxBytes(64 * 1024)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	return h
}
