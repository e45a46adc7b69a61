package metricsvc

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecole-ece/vitrine/core/content"
)

const namespace = "vitrine"

// Metrics records editor activity on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	documents    prometheus.Gauge
	loadFailures prometheus.Counter
	edits        *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
}

var _ content.Observer = (*Metrics)(nil) // interface compliance check

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		documents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "content_documents",
			Help:      "Number of page documents loaded in the editor.",
		}),
		loadFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_load_failures_total",
			Help:      "Number of failed content refreshes.",
		}),
		edits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_edits_total",
			Help:      "Number of field edits applied to edit buffers.",
		}, []string{"page"}),
		saves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_saves_total",
			Help:      "Number of document saves by result.",
		}, []string{"page", "result"}),
		saveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_save_duration_seconds",
			Help:      "Duration of document saves.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"page"}),
	}
}

func (m *Metrics) Loaded(count int, err error) {
	if err != nil {
		m.loadFailures.Inc()
		return
	}
	m.documents.Set(float64(count))
}

func (m *Metrics) Edited(key string) {
	m.edits.WithLabelValues(key).Inc()
}

func (m *Metrics) Saved(key string, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.saves.WithLabelValues(key, result).Inc()
	m.saveDuration.WithLabelValues(key).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
