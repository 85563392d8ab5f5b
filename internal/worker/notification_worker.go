package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ecomarket-assistant/internal/events"
)

// StartNotificationWorker subscribes the confirmation handlers. Actual
// delivery (email, SMS) lives outside this service; the worker records what
// would be sent so the promise in the ticket messages is traceable.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, evt events.Event) error {
		payload, _ := evt.Payload.(events.TicketCreatedPayload)
		logger.Info("ticket confirmation queued",
			zap.String("ticket_number", evt.TicketNumber),
			zap.String("ticket_type", string(payload.TicketType)),
			zap.String("customer_email", payload.CustomerEmail),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventTrackingAttached, func(ctx context.Context, evt events.Event) error {
		payload, _ := evt.Payload.(events.TrackingAttachedPayload)
		logger.Info("tracking notification queued",
			zap.String("ticket_number", evt.TicketNumber),
			zap.String("tracking_number", payload.TrackingNumber),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventLabelGenerated, func(ctx context.Context, evt events.Event) error {
		payload, _ := evt.Payload.(events.LabelGeneratedPayload)
		logger.Info("return label notification queued",
			zap.String("ticket_number", evt.TicketNumber),
			zap.String("label_number", payload.LabelNumber),
		)
		return nil
	})
}
