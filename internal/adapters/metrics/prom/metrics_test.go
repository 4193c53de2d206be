package prom

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordRegistryActivity(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.SessionCreated()
	m.SessionCreated()
	m.SessionClosed()
	m.RequestForwarded("onAuthorizeRequest")
	m.RequestResolved(true)
	m.RequestResolved(false)
	m.RequestResolved(false)
	m.PendingRequests(3)
	m.LaunchAttempt(ports.LaunchOutcomeOK)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.sessionsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sessionsClosed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsForwarded.WithLabelValues("onAuthorizeRequest")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.resolutions.WithLabelValues("true")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.resolutions.WithLabelValues("false")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.pending))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.launches.WithLabelValues(ports.LaunchOutcomeOK)))
}

func TestNewFailsOnDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	require.Error(t, err)
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.SessionCreated()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mwa_bridge_sessions_created_total 1")
}
