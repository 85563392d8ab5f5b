package tickets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecomarket-assistant/internal/events"
)

func TestTicketLifecycleEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	for _, et := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTrackingAttached,
		events.EventLabelGenerated,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, evt events.Event) error {
			published = append(published, evt)
			return nil
		})
	}

	tools, _, _ := newTestTools()
	tools.WithEvents(dispatcher)
	ctx := context.Background()

	resp := tools.CreateReturn(ctx, "t1", ReturnRequest{
		CustomerEmail: "ana@example.com",
		ProductRef:    "botella-01",
		Reason:        "defectuoso",
	})
	require.True(t, resp.Success)

	require.Len(t, published, 1)
	assert.Equal(t, events.EventTicketCreated, published[0].Type)
	assert.Equal(t, resp.TicketNumber, published[0].TicketNumber)
	payload, ok := published[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", payload.CustomerEmail)

	labelResp := tools.GenerateReturnLabel(ctx, "t1", resp.TicketNumber, "Calle 1 #2-3", "")
	require.True(t, labelResp.Success)

	// The label path updates the ticket, so both events fire.
	require.Len(t, published, 3)
	assert.Equal(t, events.EventTicketUpdated, published[1].Type)
	assert.Equal(t, events.EventLabelGenerated, published[2].Type)
	labelPayload, ok := published[2].Payload.(events.LabelGeneratedPayload)
	require.True(t, ok)
	assert.Equal(t, labelResp.LabelNumber, labelPayload.LabelNumber)
}

func TestTrackingGuidePublishesTrackingAttached(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var attached []events.Event
	dispatcher.Subscribe(events.EventTrackingAttached, func(_ context.Context, evt events.Event) error {
		attached = append(attached, evt)
		return nil
	})

	tools, _, _ := newTestTools()
	tools.WithEvents(dispatcher)

	resp := tools.GenerateTrackingGuide(context.Background(), "t1", TrackingRequest{
		CustomerEmail: "ana@example.com",
		OrderNumber:   "987",
		Carrier:       "Servientrega",
	})
	require.True(t, resp.Success)

	require.Len(t, attached, 1)
	payload, ok := attached[0].Payload.(events.TrackingAttachedPayload)
	require.True(t, ok)
	assert.Equal(t, resp.TrackingNumber, payload.TrackingNumber)
	assert.Equal(t, "Servientrega", payload.Carrier)
}

func TestToolsWithoutDispatcherStillCreate(t *testing.T) {
	tools, _, _ := newTestTools()

	resp := tools.CreatePurchase(context.Background(), "t1", PurchaseRequest{
		CustomerEmail: "ana@example.com",
		Products:      "termo",
	})
	assert.True(t, resp.Success)
}
