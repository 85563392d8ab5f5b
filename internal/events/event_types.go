package events

import (
	"time"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketUpdated    EventType = "ticket_updated"
	EventTrackingAttached EventType = "tracking_attached"
	EventLabelGenerated   EventType = "label_generated"
)

// Event represents a domain event emitted by the ticket tools.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketNumber string      `json:"ticket_number"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketType    domain.TicketType     `json:"ticket_type"`
	Priority      domain.TicketPriority `json:"priority"`
	CustomerEmail string                `json:"customer_email,omitempty"`
	Title         string                `json:"title"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Status string `json:"status"`
}

// TrackingAttachedPayload payload.
type TrackingAttachedPayload struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier,omitempty"`
}

// LabelGeneratedPayload payload.
type LabelGeneratedPayload struct {
	LabelNumber   string `json:"label_number"`
	PickupAddress string `json:"pickup_address,omitempty"`
}
