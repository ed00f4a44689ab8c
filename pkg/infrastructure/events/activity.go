package events

import (
	"context"

	"go.uber.org/zap"
)

// FinanceEvents are the event types the activity log reports by default.
var FinanceEvents = []string{
	InvoiceApprovedEvent,
	InvoicePaidEvent,
	PaymentProcessedEvent,
	PaymentScheduledEvent,
	ContractExpiredEvent,
}

// LogActivity subscribes a handler that writes each event of the given types
// to logger at info level.
func LogActivity(store EventStore, logger *zap.Logger, eventTypes []string) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("activity")
	return store.Subscribe(eventTypes, HandlerFunc(func(_ context.Context, e Event) error {
		logger.Info(e.Type(),
			zap.String("stream", e.StreamID()),
			zap.String("actor", e.Actor()),
			zap.Int("version", e.Version()),
			zap.Any("data", e.Data()))
		return nil
	}))
}
