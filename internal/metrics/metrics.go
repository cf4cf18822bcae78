// Package metrics holds the agent's Prometheus collectors. The agent has no
// network listener; collectors are written in the node_exporter textfile
// format so a local collector can pick them up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Tick metrics
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_ticks_total",
			Help: "Total ticks processed",
		},
		[]string{"engine"},
	)

	OracleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focus_oracle_errors_total",
			Help: "Foreground app lookups that failed",
		},
	)

	// Budget metrics
	WarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_warnings_total",
			Help: "Threshold warnings emitted",
		},
		[]string{"threshold"},
	)

	BlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focus_blocks_total",
			Help: "Block episodes started",
		},
	)

	ExtensionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_extensions_total",
			Help: "Extension requests by outcome",
		},
		[]string{"result"},
	)

	AppUsedSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "focus_app_used_seconds",
			Help: "Foreground seconds used today per tracked app of the active profile",
		},
		[]string{"app"},
	)

	// Effect metrics
	TerminationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_terminations_total",
			Help: "Termination attempts",
		},
		[]string{"reason", "result"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_notifications_total",
			Help: "Notifications delivered",
		},
		[]string{"result"},
	)

	AutomationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_automations_total",
			Help: "Shortcut automations started",
		},
		[]string{"result"},
	)

	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_persist_failures_total",
			Help: "Failed document saves",
		},
		[]string{"document"},
	)

	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_intents_total",
			Help: "Intents applied by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	// Session metrics
	SessionRemainingSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focus_session_remaining_seconds",
			Help: "Seconds left in the running filter session, 0 when idle",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		OracleErrors,
		WarningsTotal,
		BlocksTotal,
		ExtensionsTotal,
		AppUsedSeconds,
		TerminationsTotal,
		NotificationsTotal,
		AutomationsTotal,
		PersistFailures,
		IntentsTotal,
		SessionRemainingSeconds,
	)
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// WriteTextfile writes every registered collector to path atomically.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
