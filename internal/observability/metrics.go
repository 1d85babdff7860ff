package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL
// pipeline. Everything lives on a private registry: a batch run has no scrape
// surface, so the registry exists to be pushed once the run finishes.
type Metrics struct {
	CountriesProcessed prometheus.Counter
	ExtractErrors      prometheus.Counter
	TransformErrors    prometheus.Counter
	LoadErrors         prometheus.Counter
	UploadErrors       prometheus.Counter
	PublishErrors      prometheus.Counter
	EmptyReports       prometheus.Counter
	RowsProcessed      prometheus.Counter
	PipelineRunning    prometheus.Gauge

	CountryDuration prometheus.Histogram
	RunDuration     prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers all pipeline metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CountriesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "countries_processed_total",
			Help:      "Total countries processed, regardless of outcome.",
		}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "extract_errors_total",
			Help:      "Total report fetches that failed after retries.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "load_errors_total",
			Help:      "Total local artifact writes that failed.",
		}),
		UploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "upload_errors_total",
			Help:      "Total object store uploads that failed.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "publish_errors_total",
			Help:      "Total summary publish failures.",
		}),
		EmptyReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "empty_reports_total",
			Help:      "Total countries whose report payload contained no rows.",
		}),
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_processed_total",
			Help:      "Total report rows carried through the transform.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		CountryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "country_processing_duration_seconds",
			Help:      "Duration of one country's extract-transform-load cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete run over all configured countries.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CountriesProcessed,
		m.ExtractErrors,
		m.TransformErrors,
		m.LoadErrors,
		m.UploadErrors,
		m.PublishErrors,
		m.EmptyReports,
		m.RowsProcessed,
		m.PipelineRunning,
		m.CountryDuration,
		m.RunDuration,
	)

	return m
}

// PushToGateway pushes the registry's final state to a Prometheus
// Pushgateway under the given job name. Meant to be called once, after the
// run completes.
func (m *Metrics) PushToGateway(url, job string) error {
	return push.New(url, job).Gatherer(m.registry).Push()
}
