package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/insighter-ai/insighter/pkg/metrics"
)

type Metrics struct {
	apiResponseTime   *prometheus.HistogramVec
	apiErrorCounter   *prometheus.CounterVec
	pipelineTime      *prometheus.HistogramVec
	completionTime    *prometheus.HistogramVec
	completionError   *prometheus.CounterVec
	dispatchCounter   *prometheus.CounterVec
	catalogRecordSize *prometheus.HistogramVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:   metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:   metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		pipelineTime:      metrics.NewHistogramVec("pipeline_time", []string{"pipeline"}),
		completionTime:    metrics.NewHistogramVec("completion_time", []string{"agent"}),
		completionError:   metrics.NewCounterVec("completion_error", []string{"agent"}),
		dispatchCounter:   metrics.NewCounterVec("chat_dispatch", []string{"action"}),
		catalogRecordSize: metrics.NewHistogramVec("catalog_record_count", nil),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) PipelineTimer(pipeline string) *prometheus.Timer {
	return prometheus.NewTimer(m.pipelineTime.WithLabelValues(pipeline))
}

func (m *Metrics) CompletionTimer(agent string) *prometheus.Timer {
	return prometheus.NewTimer(m.completionTime.WithLabelValues(agent))
}

func (m *Metrics) CompletionErrorInc(agent string) {
	m.completionError.WithLabelValues(agent).Inc()
}

func (m *Metrics) DispatchInc(action string) {
	m.dispatchCounter.WithLabelValues(action).Inc()
}

func (m *Metrics) CatalogRecordCount(n int) {
	m.catalogRecordSize.WithLabelValues().Observe(float64(n))
}
