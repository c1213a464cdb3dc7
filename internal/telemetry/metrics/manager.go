package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterSessionSyncs          *prometheus.CounterVec
	CounterLedgerRowsWritten     prometheus.Counter
	CounterReports               *prometheus.CounterVec
	CounterStateWrites           prometheus.Counter
	CounterStateWritesSkipped    prometheus.Counter
	CounterLockFallbacks         prometheus.Counter
	CounterCatalogCache          *prometheus.CounterVec
	CounterRebuildsRateLimited   prometheus.Counter
	CounterUnmappedExerciseSkips prometheus.Counter

	// gauges
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistReportDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("musclestats", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("musclestats", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterSessionSyncs := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "session_syncs",
		Help:      "The total number of session load syncs, by outcome",
	}, []string{"outcome"})
	counterLedgerRowsWritten := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ledger_rows_written",
		Help:      "The total number of muscle load ledger rows inserted",
	})
	counterReports := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "load_reports",
		Help:      "The total number of muscle load reports served, by source",
	}, []string{"source"})
	counterStateWrites := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "load_state_writes",
		Help:      "The total number of load state rows persisted",
	})
	counterStateWritesSkipped := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "load_state_writes_skipped",
		Help:      "The total number of unchanged load state rows not persisted",
	})
	counterLockFallbacks := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "lock_fallbacks",
		Help:      "The total number of reports computed from the ledger because the student lock was not acquired",
	})
	counterCatalogCache := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "catalog_cache",
		Help:      "Catalog cache lookups, by result",
	}, []string{"result"})
	counterRebuildsRateLimited := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rebuilds_rate_limited",
		Help:      "The total number of rejected load state rebuilds",
	})
	counterUnmappedExerciseSkips := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "unmapped_exercise_skips",
		Help:      "The total number of completed exercises skipped for lack of a muscle mapping",
	})

	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histReportDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "load_report_duration_seconds",
		Help:      "Histogram of muscle load report computation time in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	return &Manager{
		CounterSessionSyncs:          counterSessionSyncs,
		CounterLedgerRowsWritten:     counterLedgerRowsWritten,
		CounterReports:               counterReports,
		CounterStateWrites:           counterStateWrites,
		CounterStateWritesSkipped:    counterStateWritesSkipped,
		CounterLockFallbacks:         counterLockFallbacks,
		CounterCatalogCache:          counterCatalogCache,
		CounterRebuildsRateLimited:   counterRebuildsRateLimited,
		CounterUnmappedExerciseSkips: counterUnmappedExerciseSkips,
		GaugeLifeSignal:              gaugeLifeSignal,
		HistReportDuration:           histReportDuration,
	}
}
