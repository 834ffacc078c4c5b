package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for dispatch outcomes.
type Metrics struct {
	emailsSent   prometheus.Counter
	emailsFailed prometheus.Counter
}

// NewMetrics creates and registers dispatch metrics.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "coldsend"
	}

	m := &Metrics{
		emailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Total number of emails accepted by the mail transport",
		}),
		emailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Total number of emails rejected by the mail transport",
		}),
	}

	prometheus.MustRegister(m.emailsSent, m.emailsFailed)

	return m
}

// Nil-safe recording helpers: the service runs without metrics in tests.

func (m *Metrics) recordSent() {
	if m != nil {
		m.emailsSent.Inc()
	}
}

func (m *Metrics) recordFailed() {
	if m != nil {
		m.emailsFailed.Inc()
	}
}
