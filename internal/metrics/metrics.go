// Package metrics exposes Prometheus instrumentation for the frame service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zoundz"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	FrameDocuments   *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FrameDocuments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_documents_total",
			Help:      "Frame documents emitted, by route and document kind",
		}, []string{"route", "kind"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls to the validation service and data providers",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream", "outcome"}),
	}
}

func (m *Metrics) ObserveDocument(route, kind string) {
	if m == nil {
		return
	}
	m.FrameDocuments.WithLabelValues(route, kind).Inc()
}

func (m *Metrics) ObserveUpstream(upstream string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamDuration.WithLabelValues(upstream, outcome).Observe(time.Since(start).Seconds())
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
