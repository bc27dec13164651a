// Package telemetry provides the Prometheus metrics for the bus and hub.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	EventsDispatched prometheus.Counter
	EventsProcessed  prometheus.Counter
	EventsDropped    prometheus.Counter
	ChainFailures    prometheus.Counter
	SendFailures     prometheus.Counter
	CommandsHandled  prometheus.Counter

	// Gauges
	ClientsConnected *prometheus.GaugeVec
	HistoryLength    prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		EventsDispatched = promauto.NewCounter(prometheus.CounterOpts{Name: "multichat_events_dispatched_total", Help: "Events enqueued onto the inbound queue"})
		EventsProcessed = promauto.NewCounter(prometheus.CounterOpts{Name: "multichat_events_processed_total", Help: "Events that completed the module chain"})
		EventsDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "multichat_events_dropped_total", Help: "Events dropped by a module or by a chain failure"})
		ChainFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "multichat_chain_failures_total", Help: "Module chain processing failures"})
		SendFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "multichat_send_failures_total", Help: "Per-client websocket send failures"})
		CommandsHandled = promauto.NewCounter(prometheus.CounterOpts{Name: "multichat_commands_handled_total", Help: "Moderation commands applied to history"})
		ClientsConnected = promauto.NewGaugeVec(prometheus.GaugeOpts{Name: "multichat_clients_connected", Help: "Currently registered clients per channel"}, []string{"channel"})
		HistoryLength = promauto.NewGauge(prometheus.GaugeOpts{Name: "multichat_history_length", Help: "Events currently retained in the replay buffer"})
	})
}
