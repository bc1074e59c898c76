package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

const namespace = "devforge"

// RepairMetrics counts repair sessions and attempts on its own registry.
// A CLI process is short-lived, so the registry is exported to a
// node_exporter textfile instead of being scraped.
type RepairMetrics struct {
	registry *prometheus.Registry

	sessions        *prometheus.CounterVec
	attempts        *prometheus.CounterVec
	patches         prometheus.Counter
	applies         prometheus.Counter
	sessionDuration *prometheus.HistogramVec
	attemptDuration *prometheus.HistogramVec
}

// NewRepairMetrics registers every collector on a fresh registry
func NewRepairMetrics() *RepairMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &RepairMetrics{
		registry: reg,

		// Labels: outcome (success, exhausted, adapter_failed, failed, cancelled)
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "sessions_total",
			Help:      "Repair sessions by terminal outcome",
		}, []string{"outcome"}),

		// Labels: verdict (success, crash, timeout, logic_mismatch, unknown)
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "attempts_total",
			Help:      "Executed attempts by classified verdict",
		}, []string{"verdict"}),

		patches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "patch_requests_total",
			Help:      "Patch requests sent to the completion backend",
		}),

		applies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "applied_patches_total",
			Help:      "Candidates written to the target file",
		}),

		sessionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "session_duration_seconds",
			Help:      "Wall time of a repair session",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),

		attemptDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one sandboxed execution",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"verdict"}),
	}
}

// Registry exposes the registry for export and tests
func (m *RepairMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *RepairMetrics) AttemptStarted(context.Context, repair.AttemptStarted) {}

func (m *RepairMetrics) AttemptFinished(_ context.Context, ev repair.AttemptFinished) {
	verdict := string(ev.Verdict)
	if verdict == "" {
		verdict = "none"
	}
	m.attempts.WithLabelValues(verdict).Inc()
	m.attemptDuration.WithLabelValues(verdict).Observe(ev.Duration.Seconds())
	if ev.PatchRequested {
		m.patches.Inc()
	}
	if ev.Applied {
		m.applies.Inc()
	}
}

func (m *RepairMetrics) SessionFinished(_ context.Context, ev repair.SessionFinished) {
	outcome := string(ev.Outcome)
	m.sessions.WithLabelValues(outcome).Inc()
	m.sessionDuration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (m *RepairMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
