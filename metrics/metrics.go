package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters the bot reports on its operational endpoint.
// They live on a non-global registry so tests can have their own.
type Metrics struct {
	EventsReceived      *prometheus.CounterVec
	ModalSubmissions    prometheus.Counter
	SubmissionFailures  prometheus.Counter
	CredentialExchanges *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconbot_events_received_total",
			Help: "Slack events received over socket mode by event type",
		}, []string{"type"}),
		ModalSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "reconbot_modal_submissions_total",
			Help: "Report request modals submitted",
		}),
		SubmissionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "reconbot_submission_failures_total",
			Help: "Report request submissions that could not be served",
		}),
		CredentialExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconbot_credential_exchanges_total",
			Help: "Certificate credential exchanges by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveExchange(err error) {
	if err != nil {
		m.CredentialExchanges.WithLabelValues("failure").Inc()
		return
	}
	m.CredentialExchanges.WithLabelValues("success").Inc()
}
