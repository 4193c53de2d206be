package prom

import (
	"net/http"
	"strconv"

	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mwa_bridge"

type Metrics struct {
	sessionsCreated   prometheus.Counter
	sessionsClosed    prometheus.Counter
	requestsForwarded *prometheus.CounterVec
	resolutions       *prometheus.CounterVec
	pending           prometheus.Gauge
	launches          *prometheus.CounterVec
}

var (
	_ ports.RegistryMetrics = (*Metrics)(nil)
	_ ports.LauncherMetrics = (*Metrics)(nil)
)

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Wallet sessions created.",
		}),
		sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Wallet sessions closed.",
		}),
		requestsForwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_forwarded_total",
			Help:      "Wallet requests forwarded to the consumer layer.",
		}, []string{"method"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_resolutions_total",
			Help:      "Resolve commands by whether they matched a pending request.",
		}, []string{"matched"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Requests awaiting resolution.",
		}),
		launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "Launch attempts by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.sessionsCreated, m.sessionsClosed, m.requestsForwarded, m.resolutions, m.pending, m.launches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) SessionCreated() { m.sessionsCreated.Inc() }

func (m *Metrics) SessionClosed() { m.sessionsClosed.Inc() }

func (m *Metrics) RequestForwarded(method string) {
	m.requestsForwarded.WithLabelValues(method).Inc()
}

func (m *Metrics) RequestResolved(matched bool) {
	m.resolutions.WithLabelValues(strconv.FormatBool(matched)).Inc()
}

func (m *Metrics) PendingRequests(count int) { m.pending.Set(float64(count)) }

func (m *Metrics) LaunchAttempt(outcome string) {
	m.launches.WithLabelValues(outcome).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
