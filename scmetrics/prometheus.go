// File: scmetrics/prometheus.go
// PrometheusRecorder implements Recorder on top of client_golang, grounded
// on the pack's own Prometheus wiring (oriys-nova's internal/metrics and
// runZeroInc-conniver's pkg/exporter): a private registry, CounterVec/
// GaugeVec collectors, and an http.Handler for scraping.
package scmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder is the production Recorder: one private registry per
// Context (or shared across several, if the caller wants a single
// /metrics endpoint for multiple contexts).
type PrometheusRecorder struct {
	registry *prometheus.Registry

	connections        *prometheus.GaugeVec
	heartbeatsSent     prometheus.Counter
	heartbeatTimeouts  prometheus.Counter
	codecErrors        *prometheus.CounterVec
	handshakeRejections *prometheus.CounterVec
}

// NewPrometheusRecorder builds a Recorder registered under namespace
// "bacnetsc" on a fresh, private registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: registry,
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bacnetsc",
			Name:      "connections",
			Help:      "Current connections held by the engine, by role and state.",
		}, []string{"role", "state"}),
		heartbeatsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bacnetsc",
			Name:      "heartbeats_sent_total",
			Help:      "Heartbeat-Request frames sent.",
		}),
		heartbeatTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bacnetsc",
			Name:      "heartbeat_timeouts_total",
			Help:      "Connections closed for exceeding 2x heartbeat-timeout.",
		}),
		codecErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bacnetsc",
			Name:      "codec_errors_total",
			Help:      "BVLC-SC decode errors, by error code.",
		}, []string{"code"}),
		handshakeRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bacnetsc",
			Name:      "handshake_rejections_total",
			Help:      "Connect-Request handshakes rejected, by reason.",
		}, []string{"reason"}),
	}

	registry.MustRegister(r.connections, r.heartbeatsSent, r.heartbeatTimeouts, r.codecErrors, r.handshakeRejections)
	return r
}

// Handler exposes the registry's metrics for scraping.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) SetConnectionCount(role, state string, delta int) {
	r.connections.WithLabelValues(role, state).Add(float64(delta))
}

func (r *PrometheusRecorder) HeartbeatSent() {
	r.heartbeatsSent.Inc()
}

func (r *PrometheusRecorder) HeartbeatTimeout() {
	r.heartbeatTimeouts.Inc()
}

func (r *PrometheusRecorder) CodecError(code string) {
	r.codecErrors.WithLabelValues(code).Inc()
}

func (r *PrometheusRecorder) HandshakeRejected(reason string) {
	r.handshakeRejections.WithLabelValues(reason).Inc()
}

var _ Recorder = (*PrometheusRecorder)(nil)
