package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/metrics"
)

func TestHandleGetMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	ops := prometheus.NewCounterVec(prometheus.CounterOpts{Name: metrics.MetricNameVaultOperationsTotal},
		[]string{metrics.LabelOperation, metrics.LabelStatus})
	claims := prometheus.NewCounterVec(prometheus.CounterOpts{Name: metrics.MetricNameClaimsTotal},
		[]string{metrics.LabelResult})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metrics.MetricNameHTTPRequestDuration,
		Buckets: []float64{.01, .1, 1},
	}, []string{metrics.LabelMethod, metrics.LabelPath})
	reg.MustRegister(ops, claims, latency)

	ops.WithLabelValues("deposit", "confirmed").Add(3)
	ops.WithLabelValues("claim", "pending_reconcile").Inc()
	claims.WithLabelValues(metrics.ResultAlreadyClaimed).Add(2)
	for i := 0; i < 19; i++ {
		latency.WithLabelValues("GET", "/a").Observe(.005)
	}
	latency.WithLabelValues("POST", "/b").Observe(.5)

	w := httptest.NewRecorder()
	NewAdminMetricsHandler(reg).HandleGetMetrics(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp AdminMetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 3.0, resp.Vault.OperationsByStatus["deposit/confirmed"])
	assert.Equal(t, 1.0, resp.Vault.OperationsByStatus["claim/pending_reconcile"])
	assert.Equal(t, 2.0, resp.Ledger.ClaimsByResult[metrics.ResultAlreadyClaimed])
	assert.Equal(t, 10.0, resp.HTTP.P95LatencyMs)
	assert.InDelta(t, (19*.005+.5)/20*1000, resp.HTTP.AvgLatencyMs, 0.001)
}
