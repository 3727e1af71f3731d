// Package telemetry provides metrics collection and reporting
// for monitoring the notesmcp tool server.
package telemetry

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "notesmcp"

// MetricsCollector records tool activity in a private Prometheus registry.
// It is safe for concurrent use.
type MetricsCollector struct {
	registry  *prometheus.Registry
	calls     *prometheus.CounterVec
	failures  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	noteCount prometheus.Gauge
}

// NewMetricsCollector creates a new MetricsCollector instance
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Number of tool invocations by tool name.",
		}, []string{"tool"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_failures_total",
			Help:      "Number of tool invocations that reported success=false.",
		}, []string{"tool"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool handler latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"tool"}),
		noteCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notes",
			Help:      "Number of notes currently stored.",
		}),
	}
}

// ObserveCall records one tool invocation.
func (m *MetricsCollector) ObserveCall(tool string, duration time.Duration, ok bool) {
	m.calls.WithLabelValues(tool).Inc()
	if !ok {
		m.failures.WithLabelValues(tool).Inc()
	}
	m.latency.WithLabelValues(tool).Observe(duration.Seconds())
}

// SetNoteCount updates the stored-notes gauge.
func (m *MetricsCollector) SetNoteCount(n int) {
	m.noteCount.Set(float64(n))
}

// Calls returns how many times tool has been invoked.
func (m *MetricsCollector) Calls(tool string) float64 {
	return counterValue(m.calls.WithLabelValues(tool))
}

// Failures returns how many invocations of tool reported failure.
func (m *MetricsCollector) Failures(tool string) float64 {
	return counterValue(m.failures.WithLabelValues(tool))
}

// NoteCount exposes the stored-notes gauge.
func (m *MetricsCollector) NoteCount() prometheus.Gauge {
	return m.noteCount
}

func counterValue(c prometheus.Counter) float64 {
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// Registry exposes the underlying registry for HTTP exposition and tests.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// GetReport generates a plain-text report of the counters and gauges.
func (m *MetricsCollector) GetReport() string {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Sprintf("Metrics Report unavailable: %v\n", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName() + labelString(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("  %s: %.0f", name, metric.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, fmt.Sprintf("  %s: %.0f", name, metric.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				avg := time.Duration(0)
				if h.GetSampleCount() > 0 {
					avg = time.Duration(math.Round(h.GetSampleSum() / float64(h.GetSampleCount()) * float64(time.Second)))
				}
				lines = append(lines, fmt.Sprintf("  %s: avg=%v count=%d", name, avg, h.GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)

	var b strings.Builder
	b.WriteString("Metrics Report:\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
