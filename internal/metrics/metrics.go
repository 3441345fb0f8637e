package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry              *prometheus.Registry
	attributeWrites       *prometheus.CounterVec
	rejectedWrites        prometheus.Counter
	connectedParticipants prometheus.Gauge
	instancesRemoved      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attributeWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediasync_attribute_writes_total",
				Help: "Attribute fields changed by authority writes",
			},
			[]string{"field"},
		),
		rejectedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediasync_rejected_writes_total",
			Help: "Writes rejected by the authority gate or validation",
		}),
		connectedParticipants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mediasync_connected_participants",
			Help: "Participants with an open websocket",
		}),
		instancesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediasync_instances_removed_total",
			Help: "Instances removed by their host",
		}),
	}

	m.registry.MustRegister(
		m.attributeWrites,
		m.rejectedWrites,
		m.connectedParticipants,
		m.instancesRemoved,
	)

	return m
}

func (m *Metrics) AttributeWritten(field string) {
	m.attributeWrites.WithLabelValues(field).Inc()
}

func (m *Metrics) WriteRejected() {
	m.rejectedWrites.Inc()
}

func (m *Metrics) SetConnectedParticipants(n int) {
	m.connectedParticipants.Set(float64(n))
}

func (m *Metrics) InstanceRemoved() {
	m.instancesRemoved.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
