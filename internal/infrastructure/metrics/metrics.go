package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger run metrics and implements usecase.MetricsRecorder.
type Metrics struct {
	OperationsRegistered *prometheus.CounterVec
	ConsistencyEntries   *prometheus.CounterVec
	Runs                 *prometheus.CounterVec
	RunDuration          prometheus.Histogram
	ReportsPersisted     prometheus.Counter
}

// New creates the metrics and registers them with reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		OperationsRegistered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptotax_operations_registered_total",
				Help: "Total number of operations registered by kind",
			},
			[]string{"kind"},
		),
		ConsistencyEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptotax_consistency_entries_total",
				Help: "Total consistency log entries by severity and kind",
			},
			[]string{"severity", "kind"},
		),
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptotax_runs_total",
				Help: "Total ledger runs by status",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptotax_run_duration_seconds",
			Help:    "Duration of ledger runs",
			Buckets: prometheus.DefBuckets,
		}),
		ReportsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cryptotax_reports_persisted_total",
			Help: "Total number of reports saved to the database",
		}),
	}
}

// RecordOperation counts one registered operation.
func (m *Metrics) RecordOperation(kind string) {
	m.OperationsRegistered.WithLabelValues(kind).Inc()
}

// RecordConsistencyEntry counts one consistency log entry.
func (m *Metrics) RecordConsistencyEntry(severity, kind string) {
	m.ConsistencyEntries.WithLabelValues(severity, kind).Inc()
}

// RecordRun counts a finished run and observes its duration.
func (m *Metrics) RecordRun(status string, duration time.Duration) {
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// RecordReportPersisted counts a saved report.
func (m *Metrics) RecordReportPersisted() {
	m.ReportsPersisted.Inc()
}
