package metrics

import "net/http"

type noopMetrics struct{}

func (noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter {
	return noopMeter{}
}

func (noopMetrics) GetOrCreateHistogramMeter(string, []float64) HistogramMeter {
	return noopMeter{}
}

func (noopMetrics) GetOrCreateHandler() http.Handler {
	return http.NotFoundHandler()
}

type noopMeter struct{}

func (noopMeter) AddWithLabel(int64, map[string]string) {}

func (noopMeter) Observe(float64) {}
