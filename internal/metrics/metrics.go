// Package metrics 暴露查询管线的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 查询管线指标集合
type Metrics struct {
	QueriesTotal     *prometheus.CounterVec
	ResponseDuration prometheus.Histogram
	RateLimitedTotal prometheus.Counter
	FallbacksTotal   prometheus.Counter
	UptimeSeconds    prometheus.Gauge

	startTime time.Time
}

// NewMetrics 创建并注册全部指标
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}

	m.QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_queries_total",
			Help: "Total number of processed queries",
		},
		[]string{"intent", "sentiment"},
	)

	m.ResponseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatbot_response_duration_seconds",
			Help:    "Duration of query processing in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	m.RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_rate_limited_total",
			Help: "Total number of rate-limited requests",
		},
	)

	m.FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_completion_fallbacks_total",
			Help: "Total number of responses served from the fallback table",
		},
	)

	m.UptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatbot_uptime_seconds",
			Help: "Service uptime in seconds",
		},
	)

	go m.updateUptime()

	return m
}

// RecordQuery 记录一次完成的查询
func (m *Metrics) RecordQuery(intent, sentiment string, duration time.Duration, fallback bool) {
	m.QueriesTotal.WithLabelValues(intent, sentiment).Inc()
	m.ResponseDuration.Observe(duration.Seconds())
	if fallback {
		m.FallbacksTotal.Inc()
	}
}

// RecordRateLimited 记录一次限流拒绝
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// updateUptime 周期刷新运行时长指标
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.UptimeSeconds.Set(time.Since(m.startTime).Seconds())
	}
}
