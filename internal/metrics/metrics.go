// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"feeder-populator/internal/populate"
)

var (
	// RunsTotal counts population runs by outcome.
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "populator_runs_total",
			Help: "Total number of population runs",
		},
		[]string{"outcome"},
	)

	// RunSeconds tracks wall time per run.
	RunSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "populator_run_seconds",
			Help:    "Wall time of a population run",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DwellingsTotal counts dwellings produced across runs.
	DwellingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "populator_dwellings_total",
			Help: "Total number of dwellings produced",
		},
	)

	// WarningsTotal counts data-quality warnings by kind.
	WarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "populator_warnings_total",
			Help: "Total number of non-fatal warnings raised",
		},
		[]string{"kind"},
	)

	// PoolRemaining reports the unmatched commercial pool of the last run.
	PoolRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "populator_commercial_pool_remaining",
			Help: "Commercial pool entries left unmatched by the last run",
		},
	)
)

func init() {
	prometheus.MustRegister(RunsTotal)
	prometheus.MustRegister(RunSeconds)
	prometheus.MustRegister(DwellingsTotal)
	prometheus.MustRegister(WarningsTotal)
	prometheus.MustRegister(PoolRemaining)
}

// ObserveRun records one finished run. res is nil when the run failed.
func ObserveRun(res *populate.Result, elapsed time.Duration, outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
	RunSeconds.Observe(elapsed.Seconds())
	if res == nil {
		return
	}
	DwellingsTotal.Add(float64(res.Summary.Dwellings))
	for _, w := range res.Warnings {
		WarningsTotal.WithLabelValues(string(w.Kind)).Inc()
	}
	PoolRemaining.Set(float64(res.Pool.Count))
}
