package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Logging emits one access line per request. Server errors log at error
// level, rejected requests at warn. Slack redeliveries carry their retry
// number and reason.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		id := RequestIDFromContext(r.Context())
		if id == "" {
			id = "-"
		}
		attrs := []slog.Attr{
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.bytes),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
			attrs = append(attrs,
				slog.String("slack_retry", retry),
				slog.String("slack_retry_reason", r.Header.Get("X-Slack-Retry-Reason")),
			)
		}
		slog.LogAttrs(context.Background(), accessLevel(rec.status), "request", attrs...)
	})
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// responseRecorder captures the status code and body size written downstream.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	return n, err
}
