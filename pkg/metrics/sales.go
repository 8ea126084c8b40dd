package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics records outcomes of the sale recording workflow.
type SalesMetrics struct {
	recorded *prometheus.CounterVec
	failed   *prometheus.CounterVec
	revenue  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSalesMetrics registers the sale metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carwash_sales_recorded_total",
		Help: "Sales recorded, by entry point.",
	}, []string{"entry_point"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carwash_sales_failed_total",
		Help: "Sale recordings that failed, by entry point and error code.",
	}, []string{"entry_point", "code"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carwash_sales_revenue_total",
		Help: "Sum of recorded sale totals.",
	}, []string{"entry_point"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carwash_sale_record_duration_seconds",
		Help:    "Time spent recording a sale.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entry_point"})
	reg.MustRegister(recorded, failed, revenue, duration)
	return &SalesMetrics{
		recorded: recorded,
		failed:   failed,
		revenue:  revenue,
		duration: duration,
	}
}

// ObserveRecorded counts a successful recording and its revenue.
func (m *SalesMetrics) ObserveRecorded(entryPoint string, total float64, took time.Duration) {
	if m == nil || m.recorded == nil {
		return
	}
	label := normalizeLabel(entryPoint)
	m.recorded.WithLabelValues(label).Inc()
	if total > 0 {
		m.revenue.WithLabelValues(label).Add(total)
	}
	m.duration.WithLabelValues(label).Observe(took.Seconds())
}

// ObserveFailed counts a failed recording.
func (m *SalesMetrics) ObserveFailed(entryPoint, code string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(entryPoint), normalizeLabel(code)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// Recorded returns the success counter for one entry point.
func (m *SalesMetrics) Recorded(entryPoint string) prometheus.Counter {
	return m.recorded.WithLabelValues(normalizeLabel(entryPoint))
}

// Failed returns the failure counter for one entry point and error code.
func (m *SalesMetrics) Failed(entryPoint, code string) prometheus.Counter {
	return m.failed.WithLabelValues(normalizeLabel(entryPoint), normalizeLabel(code))
}
