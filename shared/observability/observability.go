package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics bundles the Prometheus collectors the chat pipeline reports to.
type Metrics struct {
	MessagesSent      prometheus.Counter
	ResponderFailures prometheus.Counter
	ResponderLatency  prometheus.Histogram
}

// NewMetrics registers the collectors with the given registerer.
// Passing nil uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "wschatt_messages_sent_total",
			Help: "Number of user messages accepted by the chat service.",
		}),
		ResponderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wschatt_responder_failures_total",
			Help: "Number of AI responder calls that ended in a fallback message.",
		}),
		ResponderLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wschatt_responder_latency_seconds",
			Help:    "Latency of AI responder conversation calls.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
}

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
