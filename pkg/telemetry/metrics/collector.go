package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config tunes the collector.
type Config struct {
	// Namespace is the metric name prefix.
	Namespace string

	// QueryDurationBuckets override the default duration histogram
	// buckets.
	QueryDurationBuckets []float64
}

// Collector owns the Prometheus registry and all service metrics.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.HistogramVec

	exportsTotal *prometheus.CounterVec

	theoriesCreated    prometheus.Counter
	distributionRuns   *prometheus.CounterVec
	distributedUsers   prometheus.Counter
	stratificationsRun *prometheus.CounterVec
	notificationsSent  *prometheus.CounterVec
}

// NewCollector creates a collector with the specified configuration and
// registry. A nil registry gets a fresh one.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &Config{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "dataquery"
	}
	if len(cfg.QueryDurationBuckets) == 0 {
		// Interactive query latencies, 1ms to 30s.
		cfg.QueryDurationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "queries_total",
				Help:      "Total number of queries executed",
			},
			[]string{"database", "table", "status"},
		),

		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of query execution in seconds",
				Buckets:   cfg.QueryDurationBuckets,
			},
			[]string{"database"},
		),

		queryRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "query_rows_returned",
				Help:      "Number of rows returned per query",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 7), // 1 to 1M rows
			},
			[]string{"database"},
		),

		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "exports_total",
				Help:      "Total number of data exports",
			},
			[]string{"format", "status"},
		),

		theoriesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "theories_created_total",
				Help:      "Total number of theories created",
			},
		),

		distributionRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "distribution_runs_total",
				Help:      "Total distribution runs by outcome",
			},
			[]string{"outcome"},
		),

		distributedUsers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "distributed_users_total",
				Help:      "Total users assigned to campaigns by the distributor",
			},
		),

		stratificationsRun: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "stratifications_total",
				Help:      "Total stratification requests by status",
			},
			[]string{"status"},
		),

		notificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "notifications_total",
				Help:      "Total notification emails by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		c.queriesTotal,
		c.queryDuration,
		c.queryRows,
		c.exportsTotal,
		c.theoriesCreated,
		c.distributionRuns,
		c.distributedUsers,
		c.stratificationsRun,
		c.notificationsSent,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordQuery records metrics for a completed query.
func (c *Collector) RecordQuery(database, table, status string, duration time.Duration, rows int) {
	c.queriesTotal.WithLabelValues(database, table, status).Inc()
	c.queryDuration.WithLabelValues(database).Observe(duration.Seconds())
	if rows >= 0 {
		c.queryRows.WithLabelValues(database).Observe(float64(rows))
	}
}

// RecordExport records a data export.
func (c *Collector) RecordExport(format, status string) {
	c.exportsTotal.WithLabelValues(format, status).Inc()
}

// RecordTheoryCreated increments the theory creation counter.
func (c *Collector) RecordTheoryCreated() {
	c.theoriesCreated.Inc()
}

// RecordDistributionRun records the outcome of a distribution run
// ("success", "skipped", "error") and the users it assigned.
func (c *Collector) RecordDistributionRun(outcome string, usersDistributed int) {
	c.distributionRuns.WithLabelValues(outcome).Inc()
	if usersDistributed > 0 {
		c.distributedUsers.Add(float64(usersDistributed))
	}
}

// RecordStratification records a stratification request outcome.
func (c *Collector) RecordStratification(status string) {
	c.stratificationsRun.WithLabelValues(status).Inc()
}

// RecordNotification records a notification send outcome.
func (c *Collector) RecordNotification(status string) {
	c.notificationsSent.WithLabelValues(status).Inc()
}
