package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus metrics for a replay run.
// Metrics are registered on a private registry so a batch run can push
// exactly its own series and tests can build as many instances as they need.
type Metrics struct {
	Registry *prometheus.Registry

	// --- Engine ---
	EventsApplied  *prometheus.CounterVec
	EventsRejected *prometheus.CounterVec
	EventDuration  *prometheus.HistogramVec
	Sequence       prometheus.Gauge

	// --- Ledger ---
	Accounts          prometheus.Gauge
	LockedAccounts    prometheus.Gauge
	Transactions      prometheus.Gauge
	InvariantWarnings *prometheus.CounterVec

	// --- Ingestion ---
	RecordsRead    prometheus.Counter
	RecordsSkipped *prometheus.CounterVec

	// --- Sinks ---
	SinkDuration *prometheus.HistogramVec
	SinkErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		Registry: reg,

		EventsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_engine_events_applied_total",
			Help: "Events accepted by the engine",
		}, []string{"event_type"}),

		EventsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_engine_events_rejected_total",
			Help: "Events rejected by a business rule",
		}, []string{"event_type", "reason"}),

		EventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payments_engine_event_apply_duration_seconds",
			Help:    "Time to apply a single event",
			Buckets: latencyBuckets,
		}, []string{"event_type"}),

		Sequence: factory.NewGauge(prometheus.GaugeOpts{
			Name: "payments_engine_sequence",
			Help: "Number of events applied so far",
		}),

		Accounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "payments_ledger_accounts",
			Help: "Client accounts in the ledger",
		}),

		LockedAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "payments_ledger_locked_accounts",
			Help: "Client accounts locked by chargeback",
		}),

		Transactions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "payments_ledger_transactions",
			Help: "Deposits recorded in transaction history",
		}),

		InvariantWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_ledger_invariant_warnings_total",
			Help: "Post-apply invariant checks that failed",
		}, []string{"rule"}),

		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "payments_ingest_records_read_total",
			Help: "Input records decoded",
		}),

		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_ingest_records_skipped_total",
			Help: "Malformed input records skipped",
		}, []string{"field"}),

		SinkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payments_sink_duration_seconds",
			Help:    "Snapshot sink write duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"sink"}),

		SinkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_sink_errors_total",
			Help: "Snapshot sink failures",
		}, []string{"sink"}),
	}
}

// SetLedgerGauges updates ledger size gauges.
func (m *Metrics) SetLedgerGauges(accounts, locked, transactions int) {
	m.Accounts.Set(float64(accounts))
	m.LockedAccounts.Set(float64(locked))
	m.Transactions.Set(float64(transactions))
}

// Push sends the registry to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
