package metrics

import (
	"errors"
	"testing"

	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// Check that Metrics can observe the API clients.
// This test would fail to compile otherwise.
func TestMetricsIsObserver(t *testing.T) {
	_ = apiclient.Observer(New(prometheus.NewRegistry()))
}

func TestRefreshMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RefreshStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshesRunning))
	m.RequestQueued()
	m.RequestQueued()
	m.RefreshFinished(nil, 2)
	m.RefreshStarted()
	m.ForcedLogout()
	m.RefreshFinished(errors.New("refresh failed"), 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.RefreshesRunning))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueuedRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForcedLogouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("failure")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Refreshes))
}

func TestLoginMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LoginAttempted(nil)
	m.LoginAttempted(errors.New("wrong password"))
	m.LoginAttempted(errors.New("wrong password"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues("failure")))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
