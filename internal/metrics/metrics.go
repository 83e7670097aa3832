package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makenice_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// CommandsTotal counts slash command outcomes: usage, success, or the failure kind.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makenice_commands_total",
		Help: "Total slash commands handled, by outcome.",
	}, []string{"outcome"})

	// TransformDuration tracks provider latency per API type.
	TransformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "makenice_transform_duration_seconds",
		Help:    "Time spent waiting on the LLM provider.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"api_type"})

	// InputChars tracks the distribution of input text lengths.
	InputChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "makenice_input_chars",
		Help:    "Number of characters in slash command input text.",
		Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500},
	})

	// SocketEvents counts Socket Mode events by type.
	SocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makenice_socket_events_total",
		Help: "Socket Mode events received, by event type.",
	}, []string{"type"})
)
