package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Registra(t *testing.T) {
	m := New()
	m.ObserveApplied("entrada", "manual", 3*time.Millisecond)
	m.ObserveApplied("salida", "venta", time.Millisecond)
	m.ObserveRejected(ReasonInsufficientStock)
	m.IncSales()
	m.AddDrift(2)
	m.AddDrift(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsApplied.WithLabelValues("entrada", "manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsRejected.WithLabelValues(ReasonInsufficientStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SalesRecorded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DriftDetected))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ApplyDuration))
}

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveApplied("entrada", "manual", time.Millisecond)
		m.ObserveRejected(ReasonStorageFailure)
		m.IncSales()
		m.AddDrift(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncSales()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales_recorded_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
