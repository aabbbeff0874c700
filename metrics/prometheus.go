package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trybenetwork/trybe/log"
)

const namespace = "trybe"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the default no-op implementation
// for a Prometheus-backed one. It does not allow a reset.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = &prometheusMetrics{}
	}
}

type prometheusMetrics struct {
	counterVecs sync.Map
	histograms  sync.Map
}

func (p *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	if meter, ok := p.counterVecs.Load(name); ok {
		return meter.(CountVecMeter)
	}
	meter := p.newCountVecMeter(name, labels)
	p.counterVecs.Store(name, meter)
	return meter
}

func (p *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []float64) HistogramMeter {
	if meter, ok := p.histograms.Load(name); ok {
		return meter.(HistogramMeter)
	}
	meter := p.newHistogramMeter(name, buckets)
	p.histograms.Store(name, meter)
	return meter
}

func (p *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusMetrics) newCountVecMeter(name string, labels []string) CountVecMeter {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		},
		labels,
	)
	if err := prometheus.Register(vec); err != nil {
		logger.WithError(err).Warn("unable to register counter vec")
	}
	return &promCountVecMeter{vec: vec}
}

func (p *prometheusMetrics) newHistogramMeter(name string, buckets []float64) HistogramMeter {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	histogram := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   buckets,
		},
	)
	if err := prometheus.Register(histogram); err != nil {
		logger.WithError(err).Warn("unable to register histogram")
	}
	return &promHistogramMeter{histogram: histogram}
}

type promCountVecMeter struct {
	vec *prometheus.CounterVec
}

func (m *promCountVecMeter) AddWithLabel(value int64, labels map[string]string) {
	m.vec.With(labels).Add(float64(value))
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (m *promHistogramMeter) Observe(value float64) {
	m.histogram.Observe(value)
}
