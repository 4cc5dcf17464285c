package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

const namespace = "logging_hosts"

// Metrics holds the Prometheus metrics of one audit run
type Metrics struct {
	registry *prometheus.Registry

	QueryAttempts *prometheus.CounterVec
	QueryFailures *prometheus.CounterVec
	PagesFetched  *prometheus.CounterVec
	HostSetSize   *prometheus.GaugeVec
	Warnings      prometheus.Gauge
	LastRun       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QueryAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_attempts_total",
			Help:      "Total number of query attempts sent to the query service",
		}, []string{"op"}),
		QueryFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_failures_total",
			Help:      "Total number of queries that returned no data, by failure kind",
		}, []string{"op", "kind"}),
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Total number of result pages fetched",
		}, []string{"op"}),
		HostSetSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hosts",
			Help:      "Number of hosts in each collected or reconciled set",
		}, []string{"set"}),
		Warnings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warnings",
			Help:      "Number of listings that contributed partial or no data",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed audit run",
		}),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// QueryAttempted implements querysvc.Observer
func (m *Metrics) QueryAttempted(op string) {
	m.QueryAttempts.WithLabelValues(op).Inc()
}

// QueryFailed implements querysvc.Observer
func (m *Metrics) QueryFailed(op string, kind querysvc.Kind) {
	m.QueryFailures.WithLabelValues(op, kind.String()).Inc()
}

// PageFetched implements audit.PageObserver
func (m *Metrics) PageFetched(op string) {
	m.PagesFetched.WithLabelValues(op).Inc()
}

// ObserveReport records the set sizes of a finished run
func (m *Metrics) ObserveReport(r *audit.Report) {
	m.HostSetSize.WithLabelValues("inventory").Set(float64(r.InventoryCount))
	m.HostSetSize.WithLabelValues("day1").Set(float64(r.Day1Count))
	m.HostSetSize.WithLabelValues("day2").Set(float64(r.Day2Count))
	m.HostSetSize.WithLabelValues("inventory_only").Set(float64(len(r.Result.InventoryOnly)))
	m.HostSetSize.WithLabelValues("logs_only").Set(float64(len(r.Result.LogsOnly)))
	m.HostSetSize.WithLabelValues("newly_missing").Set(float64(len(r.Result.NewlyMissing)))
	m.HostSetSize.WithLabelValues("newly_appeared").Set(float64(len(r.Result.NewlyAppeared)))
	m.Warnings.Set(float64(len(r.Warnings)))
	m.LastRun.Set(float64(r.GeneratedAt.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
