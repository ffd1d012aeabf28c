package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	WizardSessionsStarted   prometheus.Counter
	WizardSubmissions       prometheus.Counter
	WizardStepRejections    *prometheus.CounterVec
	DocumentFormsPrepared   prometheus.Counter
	DocumentSubmissions     prometheus.Counter
	SubmissionForwardErrors prometheus.Counter
	ForwardLatency          prometheus.Histogram
	Notifications           *prometheus.CounterVec
	RequestLatency          *prometheus.HistogramVec
	AuditEventsDropped      prometheus.Counter
	AuditRelayBacklog       prometheus.Gauge
}

// New creates all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registerer. Tests pass a fresh
// registry so packages can construct metrics without collisions.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WizardSessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "baryo_wizard_sessions_started_total",
			Help: "Registration wizard sessions created",
		}),
		WizardSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "baryo_wizard_submissions_total",
			Help: "Registration submissions forwarded upstream",
		}),
		WizardStepRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baryo_wizard_step_rejections_total",
			Help: "Blocked step advances by step name",
		}, []string{"step"}),
		DocumentFormsPrepared: factory.NewCounter(prometheus.CounterOpts{
			Name: "baryo_document_forms_prepared_total",
			Help: "Document placeholder forms prepared",
		}),
		DocumentSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "baryo_document_submissions_total",
			Help: "Document requests forwarded upstream",
		}),
		SubmissionForwardErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "baryo_submission_forward_errors_total",
			Help: "Failed forward attempts to the upstream API",
		}),
		ForwardLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "baryo_submission_forward_seconds",
			Help:    "Latency of upstream submission forwards",
			Buckets: prometheus.DefBuckets,
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baryo_notifications_total",
			Help: "Notifications emitted by kind",
		}, []string{"kind"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "baryo_http_request_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		AuditEventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "baryo_audit_events_dropped_total",
			Help: "Audit events dropped because the inbox was full",
		}),
		AuditRelayBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "baryo_audit_relay_backlog",
			Help: "Audit rows not yet relayed to Kafka",
		}),
	}
}
