package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Metadata keys
const (
	MetadataKeyTenant    = "tenant"
	MetadataKeyRequestID = "request_id"
)

// Typed event payloads

// SpinCompletedPayloadV1 is the typed payload for spin completion events
type SpinCompletedPayloadV1 struct {
	UserID     string             `json:"user_id"`
	WheelID    string             `json:"wheel_id"`
	WinID      int64              `json:"win_id"`
	SegmentID  string             `json:"segment_id"`
	PayoutKind domain.PayoutKind  `json:"payout_kind"`
	Amount     int64              `json:"amount"`
	Route      domain.PayoutRoute `json:"route"`
	NewBalance int64              `json:"new_balance"`
	Timestamp  int64              `json:"timestamp"`
}

// RewardClaimedPayloadV1 is the typed payload for claim events
type RewardClaimedPayloadV1 struct {
	WinID          int64             `json:"win_id"`
	UserID         string            `json:"user_id"`
	PayoutKind     domain.PayoutKind `json:"payout_kind"`
	Amount         int64             `json:"amount"`
	AlreadyClaimed bool              `json:"already_claimed"`
	Timestamp      int64             `json:"timestamp"`
}

// VaultOperationPayloadV1 is the typed payload for settled vault operations
type VaultOperationPayloadV1 struct {
	OperationID string                 `json:"operation_id"`
	Kind        domain.OperationKind   `json:"kind"`
	UserID      string                 `json:"user_id"`
	Amount      uint64                 `json:"amount"`
	Signature   string                 `json:"signature,omitempty"`
	Status      domain.OperationStatus `json:"status"`
	Timestamp   int64                  `json:"timestamp"`
}

// BalanceAdjustedPayloadV1 is the typed payload for ledger delta events
type BalanceAdjustedPayloadV1 struct {
	UserID     string `json:"user_id"`
	Delta      int64  `json:"delta"`
	NewBalance int64  `json:"new_balance"`
	Timestamp  int64  `json:"timestamp"`
}

func tenantMetadata(tenantID *string) Metadata {
	if tenantID == nil {
		return nil
	}
	return map[string]interface{}{MetadataKeyTenant: *tenantID}
}

// Type-safe event constructors

// NewSpinCompletedEvent creates a spin completion event
func NewSpinCompletedEvent(tenantID *string, payload SpinCompletedPayloadV1) Event {
	if payload.Timestamp == 0 {
		payload.Timestamp = time.Now().Unix()
	}
	return Event{
		Version:  EventSchemaVersion,
		Type:     domain.EventTypeSpinCompleted,
		Payload:  payload,
		Metadata: tenantMetadata(tenantID),
	}
}

// NewRewardClaimedEvent creates a claim event
func NewRewardClaimedEvent(tenantID *string, winID int64, userID string, kind domain.PayoutKind, amount int64, alreadyClaimed bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    domain.EventTypeRewardClaimed,
		Payload: RewardClaimedPayloadV1{
			WinID:          winID,
			UserID:         userID,
			PayoutKind:     kind,
			Amount:         amount,
			AlreadyClaimed: alreadyClaimed,
			Timestamp:      time.Now().Unix(),
		},
		Metadata: tenantMetadata(tenantID),
	}
}

// NewVaultOperationEvent creates an event for a settled vault operation
func NewVaultOperationEvent(operationID string, kind domain.OperationKind, userID string, amount uint64, signature string, status domain.OperationStatus) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    domain.EventTypeVaultOperation,
		Payload: VaultOperationPayloadV1{
			OperationID: operationID,
			Kind:        kind,
			UserID:      userID,
			Amount:      amount,
			Signature:   signature,
			Status:      status,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// NewBalanceAdjustedEvent creates a ledger delta event
func NewBalanceAdjustedEvent(tenantID *string, userID string, delta, newBalance int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    domain.EventTypeBalanceAdjusted,
		Payload: BalanceAdjustedPayloadV1{
			UserID:     userID,
			Delta:      delta,
			NewBalance: newBalance,
			Timestamp:  time.Now().Unix(),
		},
		Metadata: tenantMetadata(tenantID),
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// For now, we execute handlers synchronously.
	// In the future, or with configuration, we could dispatch these to a worker pool
	// or run them in goroutines.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
