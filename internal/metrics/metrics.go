package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every metric the server exports. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	AppointmentsBooked  prometheus.Counter
	AppointmentStatus   *prometheus.CounterVec
	BookingRejections   *prometheus.CounterVec
	TriageRecorded      *prometheus.CounterVec
	AssessmentsScored   *prometheus.CounterVec
	PrescriptionsIssued prometheus.Counter
	LoginAttempts       *prometheus.CounterVec
}

// NewCollector registers the metrics on a fresh registry, together with the
// Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		AppointmentsBooked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "appointments_booked_total",
			Help:      "Total appointments booked.",
		}),

		AppointmentStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "appointment_status_changes_total",
			Help:      "Appointment status transitions by target status.",
		}, []string{"status"}),

		BookingRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "booking_rejections_total",
			Help:      "Booking attempts rejected, by reason.",
		}, []string{"reason"}),

		TriageRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "triage_records_total",
			Help:      "Triage records saved, by derived priority.",
		}, []string{"priority"}),

		AssessmentsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "assessments_scored_total",
			Help:      "Neurological instruments scored, by instrument.",
		}, []string{"instrument"}),

		PrescriptionsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "prescriptions_issued_total",
			Help:      "Total prescriptions issued.",
		}),

		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) IncBooked() {
	if c != nil {
		c.AppointmentsBooked.Inc()
	}
}

func (c *Collector) IncBookingRejected(reason string) {
	if c != nil {
		c.BookingRejections.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) IncStatus(status string) {
	if c != nil {
		c.AppointmentStatus.WithLabelValues(status).Inc()
	}
}

func (c *Collector) IncTriage(priority string) {
	if c != nil {
		c.TriageRecorded.WithLabelValues(priority).Inc()
	}
}

func (c *Collector) IncAssessment(instrument string) {
	if c != nil {
		c.AssessmentsScored.WithLabelValues(instrument).Inc()
	}
}

func (c *Collector) IncPrescription() {
	if c != nil {
		c.PrescriptionsIssued.Inc()
	}
}

func (c *Collector) IncLogin(result string) {
	if c != nil {
		c.LoginAttempts.WithLabelValues(result).Inc()
	}
}
