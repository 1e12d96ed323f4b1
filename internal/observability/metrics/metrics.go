package metrics

import "github.com/prometheus/client_golang/prometheus"

// Booking outcomes reported by the scheduling coordinator.
const (
	OutcomeBooked      = "booked"
	OutcomeInvalid     = "invalid"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
)

// ChatMetrics exposes counters/histograms for the dialogue and booking flows.
type ChatMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	responsesTotal   *prometheus.CounterVec
	crisisTotal      prometheus.Counter
	externalLatency  *prometheus.HistogramVec
	maintenanceTotal *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equilibra",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		responsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equilibra",
			Subsystem: "dialogue",
			Name:      "responses_total",
			Help:      "Replies served by selection strategy",
		}, []string{"source"}),
		crisisTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "equilibra",
			Subsystem: "dialogue",
			Name:      "crisis_overrides_total",
			Help:      "Safety messages substituted for a normal reply",
		}),
		externalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "equilibra",
			Subsystem: "external",
			Name:      "call_duration_seconds",
			Help:      "Latency of calendar, email and text-generation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "status"}),
		maintenanceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equilibra",
			Subsystem: "maintenance",
			Name:      "removed_total",
			Help:      "Entries removed by background maintenance",
		}, []string{"task"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.responsesTotal, m.crisisTotal, m.externalLatency, m.maintenanceTotal)
	return m
}

func (m *ChatMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveResponse(source string) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(source).Inc()
}

func (m *ChatMetrics) ObserveCrisis() {
	if m == nil {
		return
	}
	m.crisisTotal.Inc()
}

// ObserveExternalCall records one call to an upstream service.
func (m *ChatMetrics) ObserveExternalCall(service string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.externalLatency.WithLabelValues(service, status).Observe(seconds)
}

func (m *ChatMetrics) ObserveMaintenance(task string, removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.maintenanceTotal.WithLabelValues(task).Add(float64(removed))
}
