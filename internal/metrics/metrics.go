// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pcm_startlist"

// Resolution outcomes used as label values.
const (
	OutcomeMatched     = "matched"
	OutcomePlaceholder = "placeholder"
	OutcomeUnmatched   = "unmatched"
)

var (
	registerOnce sync.Once

	operationStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_started_total",
		Help:      "Total number of operations started by type",
	}, []string{"type"})
	operationCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_completed_total",
		Help:      "Total number of operations successfully completed by type",
	}, []string{"type"})
	operationFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_failed_total",
		Help:      "Total number of operations failed by type",
	}, []string{"type"})
	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Histogram of operation durations in seconds by type",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms up to ~40s for conversions
	}, []string{"type"})

	teamsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "teams_resolved_total",
		Help:      "Startlist teams processed by resolution outcome",
	}, []string{"outcome"})
	ridersResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "riders_resolved_total",
		Help:      "Startlist riders processed by resolution outcome",
	}, []string{"outcome"})
	ridersMoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "riders_moved_total",
		Help:      "Riders moved to the free-agent pool",
	})
	contractsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contracts_removed_total",
		Help:      "Contracts deleted for riders moved to the free-agent pool",
	})

	datasetTeamsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_teams",
		Help:      "Teams in the loaded reference dataset",
	})
	datasetCyclistsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_cyclists",
		Help:      "Cyclists in the loaded reference dataset",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(operationStarted, operationCompleted, operationFailed, operationDuration,
			teamsResolved, ridersResolved, ridersMoved, contractsRemoved,
			datasetTeamsGauge, datasetCyclistsGauge)
	})
}

// Operation lifecycle helpers
func IncOperationStarted(opType string)   { operationStarted.WithLabelValues(opType).Inc() }
func IncOperationCompleted(opType string) { operationCompleted.WithLabelValues(opType).Inc() }
func IncOperationFailed(opType string)    { operationFailed.WithLabelValues(opType).Inc() }
func ObserveOperationDuration(opType string, d time.Duration) {
	operationDuration.WithLabelValues(opType).Observe(d.Seconds())
}

// Track records the start of an operation and returns a func that records
// its outcome and duration.
func Track(opType string) func(err error) {
	IncOperationStarted(opType)
	start := time.Now()
	return func(err error) {
		ObserveOperationDuration(opType, time.Since(start))
		if err != nil {
			IncOperationFailed(opType)
			return
		}
		IncOperationCompleted(opType)
	}
}

// Resolution counters
func AddTeams(outcome string, n int)  { teamsResolved.WithLabelValues(outcome).Add(float64(n)) }
func AddRiders(outcome string, n int) { ridersResolved.WithLabelValues(outcome).Add(float64(n)) }

// Roster mutation counters
func AddRidersMoved(n int64)      { ridersMoved.Add(float64(n)) }
func AddContractsRemoved(n int64) { contractsRemoved.Add(float64(n)) }

// Gauges
func SetDataset(teams, cyclists int) {
	datasetTeamsGauge.Set(float64(teams))
	datasetCyclistsGauge.Set(float64(cyclists))
}

// WriteTextfile registers the metrics and writes the default registry in
// the text exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	Register()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
