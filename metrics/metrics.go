// Package metrics is a singleton facade over the meters the daemon
// exports. It defaults to a no-op implementation; the Prometheus
// implementation is switched in by the entry point.
package metrics

import "net/http"

var metrics Metrics = noopMetrics{}

// Metrics defines the meter factory implementations provide.
type Metrics interface {
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateHistogramMeter(name string, buckets []float64) HistogramMeter
	GetOrCreateHandler() http.Handler
}

// CountVecMeter is a monotonically increasing counter with labels.
type CountVecMeter interface {
	AddWithLabel(value int64, labels map[string]string)
}

// HistogramMeter aggregates reported measurements over time.
type HistogramMeter interface {
	Observe(value float64)
}

// CounterVec returns a labeled counter by name.
func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// Histogram returns a histogram by name.
func Histogram(name string, buckets []float64) HistogramMeter {
	return metrics.GetOrCreateHistogramMeter(name, buckets)
}

// Handler returns the http handler for scraping metrics.
func Handler() http.Handler {
	return metrics.GetOrCreateHandler()
}
