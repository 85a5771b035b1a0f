package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// tracedEventTypes are the events the trace logger follows
var tracedEventTypes = []event.Type{
	domain.EventTypeSpinCompleted,
	domain.EventTypeRewardClaimed,
	domain.EventTypeVaultOperation,
	domain.EventTypeBalanceAdjusted,
}

// RegisterEventHandlers subscribes the metrics collector and a debug-level
// trace logger to the bus
func RegisterEventHandlers(bus event.Bus) error {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(bus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	for _, eventType := range tracedEventTypes {
		bus.Subscribe(eventType, traceEvent)
	}
	slog.Info(LogMsgEventTraceRegistered, "event_types", len(tracedEventTypes))
	return nil
}

func traceEvent(ctx context.Context, evt event.Event) error {
	logger.FromContext(ctx).Debug(LogMsgEventObserved,
		"event_type", evt.Type,
		"version", evt.Version,
		"tenant", evt.GetMetadataValue(event.MetadataKeyTenant))
	return nil
}
