package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Chain Metrics
var (
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRPCRequestsTotal,
			Help: HelpTextRPCRequestsTotal,
		},
		[]string{LabelMethod, LabelOutcome},
	)

	RPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameRPCRequestDuration,
			Help:    HelpTextRPCRequestDuration,
			Buckets: RPCLatencyBuckets,
		},
		[]string{LabelMethod},
	)

	TransactionsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransactionsSentTotal,
			Help: HelpTextTransactionsSentTotal,
		},
		[]string{LabelOutcome},
	)

	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRetryAttemptsTotal,
			Help: HelpTextRetryAttemptsTotal,
		},
		[]string{LabelOperation},
	)

	VaultOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameVaultOperationsTotal,
			Help: HelpTextVaultOperationsTotal,
		},
		[]string{LabelOperation, LabelStatus},
	)

	GuardRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGuardRejectionsTotal,
			Help: HelpTextGuardRejectionsTotal,
		},
		[]string{LabelReason},
	)
)

// Ledger Metrics
var (
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimsTotal,
			Help: HelpTextClaimsTotal,
		},
		[]string{LabelResult},
	)

	LedgerConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLedgerConflictsTotal,
			Help: HelpTextLedgerConflictsTotal,
		},
	)

	SpinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSpinsTotal,
			Help: HelpTextSpinsTotal,
		},
		[]string{LabelPayoutKind},
	)

	PayoutAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePayoutAmountTotal,
			Help: HelpTextPayoutAmountTotal,
		},
		[]string{LabelPayoutKind},
	)
)
