// Package metrics exposes prometheus metrics about the admin sessions and their token refreshes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess string = "success"
	outcomeFailure string = "failure"
)

// Metrics implements apiclient.Observer, one instance is shared by all the clients of the gateway.
type Metrics struct {
	Refreshes        *prometheus.CounterVec
	RefreshesRunning prometheus.Gauge
	QueuedRequests   prometheus.Counter
	RefreshWaiters   prometheus.Histogram
	ForcedLogouts    prometheus.Counter
	Logins           *prometheus.CounterVec
}

// New registers the metrics with reg, pass prometheus.DefaultRegisterer outside of tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_token_refreshes_total",
			Help: "Total number of access token refreshes by outcome",
		}, []string{"outcome"}),
		RefreshesRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portal_token_refreshes_in_flight",
			Help: "Number of access token refreshes currently running",
		}),
		QueuedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_refresh_queued_requests_total",
			Help: "Total number of requests that waited on a refresh started by another request",
		}),
		RefreshWaiters: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_refresh_waiters",
			Help:    "Number of queued requests settled by one refresh",
			Buckets: []float64{0, 1, 2, 5, 10, 25},
		}),
		ForcedLogouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_forced_logouts_total",
			Help: "Total number of admin sessions ended because the token could not be refreshed",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_admin_logins_total",
			Help: "Total number of admin login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RefreshStarted() {
	m.RefreshesRunning.Inc()
}

func (m *Metrics) RefreshFinished(err error, waiters int) {
	m.RefreshesRunning.Dec()
	m.RefreshWaiters.Observe(float64(waiters))
	m.Refreshes.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) RequestQueued() {
	m.QueuedRequests.Inc()
}

func (m *Metrics) ForcedLogout() {
	m.ForcedLogouts.Inc()
}

// LoginAttempted records the outcome of an admin login.
func (m *Metrics) LoginAttempted(err error) {
	m.Logins.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
