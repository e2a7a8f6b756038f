package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prediction outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation_error"
	OutcomeInference  = "inference_error"
)

// Metrics 预测服务指标. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	predictions     *prometheus.CounterVec
	inference       prometheus.Histogram
	ready           prometheus.Gauge
	artifactChanges *prometheus.CounterVec
}

// NewMetrics 创建指标集合，使用独立的 registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goldpredict",
			Name:      "predictions_total",
			Help:      "Predict actions by outcome.",
		}, []string{"outcome"}),
		inference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goldpredict",
			Name:      "inference_seconds",
			Help:      "Time spent inside the model's inference call.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goldpredict",
			Name:      "ready",
			Help:      "1 when dataset and model loaded, 0 when startup halted.",
		}),
		artifactChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goldpredict",
			Name:      "artifact_changes_total",
			Help:      "On-disk changes to loaded artifacts since startup.",
		}, []string{"artifact"}),
	}
	m.registry.MustRegister(
		m.predictions,
		m.inference,
		m.ready,
		m.artifactChanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction 记录一次预测
func (m *Metrics) ObservePrediction(outcome string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

// ObserveInference 记录推理耗时
func (m *Metrics) ObserveInference(d time.Duration) {
	if m == nil {
		return
	}
	m.inference.Observe(d.Seconds())
}

func (m *Metrics) SetReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.ready.Set(1)
		return
	}
	m.ready.Set(0)
}

func (m *Metrics) ArtifactChanged(artifact string) {
	if m == nil {
		return
	}
	m.artifactChanges.WithLabelValues(artifact).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 导出 Prometheus 格式
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
