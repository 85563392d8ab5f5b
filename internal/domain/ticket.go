package domain

import "time"

// TicketType enumerates the kinds of requests the storefront handles.
type TicketType string

const (
	TicketTypeReturn   TicketType = "devolucion"
	TicketTypePurchase TicketType = "compra"
	TicketTypeTracking TicketType = "guia_de_seguimiento"
	TicketTypeInvoice  TicketType = "factura"
	TicketTypeFeedback TicketType = "queja_reclamo_felicitacion"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "alta"
)

// Well-known status values. Statuses are free-form per ticket type; these
// cover the values assigned at creation.
const (
	TicketStatusPending    = "pendiente"
	TicketStatusProcessing = "procesando"
	TicketStatusActive     = "activo"
	TicketStatusInTransit  = "en_transito"
	TicketStatusOpen       = "abierto"
	TicketStatusGenerated  = "generada"
)

// Ticket is the aggregate for customer requests of every type. Fields that
// only apply to some types stay zero-valued for the rest.
type Ticket struct {
	ID             string
	TicketNumber   string
	Type           TicketType
	Status         string
	Priority       TicketPriority
	Title          string
	Description    string
	CustomerEmail  string
	CustomerName   string
	CustomerPhone  string
	ProductRef     string
	Quantity       int
	Total          float64
	InvoiceNumber  string
	TrackingNumber string
	LabelNumber    string
	ReturnReason   string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
}
