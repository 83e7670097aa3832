package middleware

import (
	"net/http"
	"strconv"

	"github.com/mlorentedev/makenice/internal/metrics"
)

var knownPaths = map[string]bool{
	"/slack/commands": true,
	"/api/health":     true,
	"/metrics":        true,
}

// Metrics records request count by method, path, and status code.
// Unknown paths are folded into "other" to keep label cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RequestsTotal.WithLabelValues(r.Method, metricPath(r.URL.Path), strconv.Itoa(rec.status)).Inc()
	})
}

func metricPath(path string) string {
	if knownPaths[path] {
		return path
	}
	return "other"
}
