package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Chain metric names
const (
	MetricNameRPCRequestsTotal      = "rpc_requests_total"
	MetricNameRPCRequestDuration    = "rpc_request_duration_seconds"
	MetricNameTransactionsSentTotal = "transactions_sent_total"
	MetricNameRetryAttemptsTotal    = "retry_attempts_total"
	MetricNameVaultOperationsTotal  = "vault_operations_total"
	MetricNameGuardRejectionsTotal  = "submission_guard_rejections_total"
)

// Ledger metric names
const (
	MetricNameClaimsTotal          = "reward_claims_total"
	MetricNameLedgerConflictsTotal = "ledger_cas_conflicts_total"
	MetricNameSpinsTotal           = "spins_total"
	MetricNamePayoutAmountTotal    = "payout_amount_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Chain metric help text
const (
	HelpTextRPCRequestsTotal      = "Total number of node RPC calls"
	HelpTextRPCRequestDuration    = "Node RPC latency in seconds"
	HelpTextTransactionsSentTotal = "Total number of signed payloads handed to the network"
	HelpTextRetryAttemptsTotal    = "Total number of retried read attempts"
	HelpTextVaultOperationsTotal  = "Total number of vault operations by final status"
	HelpTextGuardRejectionsTotal  = "Total number of submissions rejected by the guard"
)

// Ledger metric help text
const (
	HelpTextClaimsTotal          = "Total number of reward claim requests by result"
	HelpTextLedgerConflictsTotal = "Total number of compare-and-swap conflicts on ledger balances"
	HelpTextSpinsTotal           = "Total number of spins by payout kind"
	HelpTextPayoutAmountTotal    = "Total amount paid out by payout kind"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelType       = "type"
	LabelOutcome    = "outcome"
	LabelOperation  = "operation"
	LabelReason     = "reason"
	LabelResult     = "result"
	LabelPayoutKind = "payout_kind"
)

// ============================================================================
// Label Values
// ============================================================================

const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"

	ReasonCooldown = "cooldown"
	ReasonInFlight = "in_flight"

	ResultClaimed        = "claimed"
	ResultAlreadyClaimed = "already_claimed"
	ResultFailed         = "failed"
)

// ============================================================================
// Event Payload Field Names
// ============================================================================

// Field names used when extracting values from map payloads
const (
	PayloadFieldPayoutKind = "payout_kind"
	PayloadFieldAmount     = "amount"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// RPCLatencyBuckets covers node round trips, which run slower than local handlers
var RPCLatencyBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadUnknown = "Event payload has unexpected shape"
	LogMsgMetricsRecorded     = "Metrics recorded for event"
)
