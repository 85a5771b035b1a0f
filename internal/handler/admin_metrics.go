package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// AdminMetricsResponse contains JSON-formatted metrics for the operator dashboard
type AdminMetricsResponse struct {
	HTTP   HTTPMetrics   `json:"http"`
	Events EventMetrics  `json:"events"`
	Vault  VaultMetrics  `json:"vault"`
	Ledger LedgerMetrics `json:"ledger"`
}

type HTTPMetrics struct {
	RequestsTotalByStatus map[string]float64 `json:"requests_total_by_status"`
	AvgLatencyMs          float64            `json:"avg_latency_ms"`
	P95LatencyMs          float64            `json:"p95_latency_ms"`
	InFlight              float64            `json:"in_flight"`
}

type EventMetrics struct {
	PublishedTotalByType map[string]float64 `json:"published_total_by_type"`
	HandlerErrorsByType  map[string]float64 `json:"handler_errors_by_type"`
}

type VaultMetrics struct {
	// OperationsByStatus is keyed "kind/status"
	OperationsByStatus map[string]float64 `json:"operations_by_status"`
	SentByOutcome      map[string]float64 `json:"sent_by_outcome"`
	GuardRejections    map[string]float64 `json:"guard_rejections"`
	RPCP95LatencyMs    float64            `json:"rpc_p95_latency_ms"`
}

type LedgerMetrics struct {
	ClaimsByResult   map[string]float64 `json:"claims_by_result"`
	SpinsByPayout    map[string]float64 `json:"spins_by_payout"`
	CASConflictTotal float64            `json:"cas_conflict_total"`
}

// AdminMetricsHandler handles admin metrics requests
type AdminMetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewAdminMetricsHandler reads from gatherer; nil means the default registry
func NewAdminMetricsHandler(gatherer prometheus.Gatherer) *AdminMetricsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &AdminMetricsHandler{gatherer: gatherer}
}

// HandleGetMetrics returns JSON-formatted metrics from Prometheus
// @Summary Operator metrics summary
// @Tags admin
// @Produce json
// @Success 200 {object} AdminMetricsResponse
// @Router /api/v1/admin/metrics [get]
func (h *AdminMetricsHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	summary, err := gatherMetrics(h.gatherer)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to gather metrics")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func gatherMetrics(gatherer prometheus.Gatherer) (*AdminMetricsResponse, error) {
	metricFamilies, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}

	resp := &AdminMetricsResponse{
		HTTP: HTTPMetrics{RequestsTotalByStatus: make(map[string]float64)},
		Events: EventMetrics{
			PublishedTotalByType: make(map[string]float64),
			HandlerErrorsByType:  make(map[string]float64),
		},
		Vault: VaultMetrics{
			OperationsByStatus: make(map[string]float64),
			SentByOutcome:      make(map[string]float64),
			GuardRejections:    make(map[string]float64),
		},
		Ledger: LedgerMetrics{
			ClaimsByResult: make(map[string]float64),
			SpinsByPayout:  make(map[string]float64),
		},
	}

	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case metrics.MetricNameHTTPRequestsTotal:
			sumCounterBy(mf, resp.HTTP.RequestsTotalByStatus, metrics.LabelStatus)
		case metrics.MetricNameHTTPRequestDuration:
			var merged dto.Histogram
			for _, m := range mf.GetMetric() {
				mergeHistogram(&merged, m.GetHistogram())
			}
			if merged.GetSampleCount() > 0 {
				resp.HTTP.AvgLatencyMs = (merged.GetSampleSum() / float64(merged.GetSampleCount())) * 1000
			}
			resp.HTTP.P95LatencyMs = estimateQuantile(&merged, 0.95) * 1000
		case metrics.MetricNameHTTPRequestsInFlight:
			for _, m := range mf.GetMetric() {
				resp.HTTP.InFlight += m.GetGauge().GetValue()
			}
		case metrics.MetricNameEventsPublished:
			sumCounterBy(mf, resp.Events.PublishedTotalByType, metrics.LabelType)
		case metrics.MetricNameEventHandlerErrors:
			sumCounterBy(mf, resp.Events.HandlerErrorsByType, metrics.LabelType)
		case metrics.MetricNameVaultOperationsTotal:
			for _, m := range mf.GetMetric() {
				key := getLabelValue(m, metrics.LabelOperation) + "/" + getLabelValue(m, metrics.LabelStatus)
				resp.Vault.OperationsByStatus[key] += m.GetCounter().GetValue()
			}
		case metrics.MetricNameTransactionsSentTotal:
			sumCounterBy(mf, resp.Vault.SentByOutcome, metrics.LabelOutcome)
		case metrics.MetricNameGuardRejectionsTotal:
			sumCounterBy(mf, resp.Vault.GuardRejections, metrics.LabelReason)
		case metrics.MetricNameRPCRequestDuration:
			var merged dto.Histogram
			for _, m := range mf.GetMetric() {
				mergeHistogram(&merged, m.GetHistogram())
			}
			resp.Vault.RPCP95LatencyMs = estimateQuantile(&merged, 0.95) * 1000
		case metrics.MetricNameClaimsTotal:
			sumCounterBy(mf, resp.Ledger.ClaimsByResult, metrics.LabelResult)
		case metrics.MetricNameSpinsTotal:
			sumCounterBy(mf, resp.Ledger.SpinsByPayout, metrics.LabelPayoutKind)
		case metrics.MetricNameLedgerConflictsTotal:
			for _, m := range mf.GetMetric() {
				resp.Ledger.CASConflictTotal += m.GetCounter().GetValue()
			}
		}
	}

	return resp, nil
}

func sumCounterBy(mf *dto.MetricFamily, into map[string]float64, label string) {
	for _, m := range mf.GetMetric() {
		if value := getLabelValue(m, label); value != "" {
			into[value] += m.GetCounter().GetValue()
		}
	}
}

func getLabelValue(m *dto.Metric, labelName string) string {
	for _, label := range m.GetLabel() {
		if label.GetName() == labelName {
			return label.GetValue()
		}
	}
	return ""
}

// mergeHistogram adds src into dst. Series of one vector share bucket bounds.
func mergeHistogram(dst *dto.Histogram, src *dto.Histogram) {
	if src == nil {
		return
	}
	count := dst.GetSampleCount() + src.GetSampleCount()
	sum := dst.GetSampleSum() + src.GetSampleSum()
	dst.SampleCount = &count
	dst.SampleSum = &sum

	if len(dst.Bucket) == 0 {
		for _, b := range src.GetBucket() {
			cumulative, upper := b.GetCumulativeCount(), b.GetUpperBound()
			dst.Bucket = append(dst.Bucket, &dto.Bucket{CumulativeCount: &cumulative, UpperBound: &upper})
		}
		return
	}
	for i, b := range src.GetBucket() {
		if i >= len(dst.Bucket) {
			break
		}
		cumulative := dst.Bucket[i].GetCumulativeCount() + b.GetCumulativeCount()
		dst.Bucket[i].CumulativeCount = &cumulative
	}
}

// estimateQuantile approximates the given quantile from a histogram
func estimateQuantile(hist *dto.Histogram, quantile float64) float64 {
	totalCount := hist.GetSampleCount()
	if totalCount == 0 {
		return 0
	}

	targetCount := float64(totalCount) * quantile
	buckets := hist.GetBucket()
	for _, bucket := range buckets {
		if float64(bucket.GetCumulativeCount()) >= targetCount {
			return bucket.GetUpperBound()
		}
	}

	// Past the last finite bucket
	if len(buckets) > 0 {
		return buckets[len(buckets)-1].GetUpperBound()
	}
	return 0
}
