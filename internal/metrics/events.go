package metrics

import (
	"context"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		domain.EventTypeSpinCompleted,
		domain.EventTypeRewardClaimed,
		domain.EventTypeVaultOperation,
		domain.EventTypeBalanceAdjusted,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	// Spin, claim and vault counters are recorded where the work happens;
	// only the payout volume is derived from events.
	if evt.Type == domain.EventTypeSpinCompleted {
		payload, err := event.DecodePayload[event.SpinCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUnknown, "type", evt.Type, "error", err)
			return nil
		}
		PayoutAmountTotal.WithLabelValues(payload.PayoutKind.String()).Add(float64(payload.Amount))
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
