package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/events"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
)

// ToolResponse is the uniform result every ticket tool returns. Success
// carries a message plus follow-up instructions; failure carries the message
// and the underlying error text without raising.
type ToolResponse struct {
	Success        bool              `json:"exito"`
	TicketNumber   string            `json:"ticket_number,omitempty"`
	TrackingNumber string            `json:"numero_seguimiento,omitempty"`
	LabelNumber    string            `json:"etiqueta_numero,omitempty"`
	Status         string            `json:"estado,omitempty"`
	Message        string            `json:"mensaje"`
	Instructions   string            `json:"instrucciones,omitempty"`
	Err            string            `json:"error,omitempty"`
	Total          int               `json:"total,omitempty"`
	Tickets        []FormattedTicket `json:"tickets,omitempty"`
}

// FormattedTicket is the customer-facing projection of a ticket record.
// Absent optional fields render as "N/A".
type FormattedTicket struct {
	Number         string `json:"numero"`
	Type           string `json:"tipo"`
	Status         string `json:"estado"`
	Priority       string `json:"prioridad"`
	Title          string `json:"titulo"`
	Description    string `json:"descripcion"`
	CustomerName   string `json:"cliente_nombre"`
	CustomerEmail  string `json:"cliente_email"`
	CustomerPhone  string `json:"cliente_telefono"`
	ProductRef     string `json:"producto_id"`
	InvoiceNumber  string `json:"factura_numero"`
	Quantity       string `json:"cantidad"`
	Total          string `json:"total"`
	TrackingNumber string `json:"numero_seguimiento"`
	CreatedAt      string `json:"fecha_creacion"`
	UpdatedAt      string `json:"fecha_actualizacion"`
	ResolvedAt     string `json:"fecha_resolucion"`
}

// Tools runs the ticket lifecycle operations against the store. Store writes
// go through the bounded retry policy; trace records share the caller's
// trace id.
type Tools struct {
	store  repository.TicketStore
	tracer *observability.Tracer
	retry  repository.RetryPolicy
	events events.Dispatcher
}

// NewTools wires the ticket tools.
func NewTools(store repository.TicketStore, tracer *observability.Tracer, retry repository.RetryPolicy) *Tools {
	return &Tools{store: store, tracer: tracer, retry: retry}
}

// WithEvents attaches a dispatcher for ticket lifecycle events.
func (t *Tools) WithEvents(dispatcher events.Dispatcher) *Tools {
	t.events = dispatcher
	return t
}

// ReturnRequest are the inputs for opening a return ticket.
type ReturnRequest struct {
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	ProductRef    string
	InvoiceNumber string
	Reason        string
	Quantity      int
	Notes         string
}

// CreateReturn opens a return ticket. Returns always start pending with high
// priority.
func (t *Tools) CreateReturn(ctx context.Context, traceID string, req ReturnRequest) ToolResponse {
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		TicketNumber:  GenerateTicketNumber(),
		Type:          domain.TicketTypeReturn,
		Status:        domain.TicketStatusPending,
		Priority:      domain.TicketPriorityHigh,
		Title:         fmt.Sprintf("Devolución de producto: %s", req.ProductRef),
		Description:   fmt.Sprintf("Cliente solicita devolución de %d unidad(es) de %s. Motivo: %s", qty, req.ProductRef, req.Reason),
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ProductRef:    req.ProductRef,
		InvoiceNumber: req.InvoiceNumber,
		Quantity:      qty,
		ReturnReason:  req.Reason,
		Notes:         req.Notes,
	}
	if err := t.create(ctx, ticket); err != nil {
		t.tracer.Error(traceID, "CREATE_RETURN_TICKET_ERROR", fmt.Sprintf("Error creando ticket de devolución: %s", err), nil)
		return failure(err, "Hubo un error al crear el ticket de devolución")
	}
	t.tracer.Info(traceID, "CREATE_RETURN_TICKET", fmt.Sprintf("Ticket de devolución creado: %s", ticket.TicketNumber),
		map[string]any{"ticket_number": ticket.TicketNumber, "producto": req.ProductRef})
	return ToolResponse{
		Success:      true,
		TicketNumber: ticket.TicketNumber,
		Message:      fmt.Sprintf("Ticket de devolución creado exitosamente. Su número de ticket es: %s", ticket.TicketNumber),
		Instructions: "Su solicitud ha sido registrada. Un representante se comunicará con usted pronto.",
	}
}

// PurchaseRequest are the inputs for recording a purchase.
type PurchaseRequest struct {
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Products      string
	Total         float64
	Notes         string
}

// CreatePurchase records a purchase order ticket.
func (t *Tools) CreatePurchase(ctx context.Context, traceID string, req PurchaseRequest) ToolResponse {
	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		TicketNumber:  GenerateTicketNumber(),
		Type:          domain.TicketTypePurchase,
		Status:        domain.TicketStatusProcessing,
		Priority:      domain.TicketPriorityNormal,
		Title:         fmt.Sprintf("Compra de %s", req.Products),
		Description:   fmt.Sprintf("Cliente realizó compra de %s. Total: $%v", req.Products, req.Total),
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ProductRef:    req.Products,
		Total:         req.Total,
		Notes:         req.Notes,
	}
	if err := t.create(ctx, ticket); err != nil {
		t.tracer.Error(traceID, "CREATE_PURCHASE_TICKET_ERROR", fmt.Sprintf("Error creando ticket de compra: %s", err), nil)
		return failure(err, "Hubo un error al crear el ticket de compra")
	}
	t.tracer.Info(traceID, "CREATE_PURCHASE_TICKET", fmt.Sprintf("Ticket de compra creado: %s", ticket.TicketNumber),
		map[string]any{"ticket_number": ticket.TicketNumber, "total": req.Total})
	return ToolResponse{
		Success:      true,
		TicketNumber: ticket.TicketNumber,
		Message:      fmt.Sprintf("Ticket de compra creado exitosamente. Su número de orden es: %s", ticket.TicketNumber),
		Instructions: "Su pedido está siendo procesado. Recibirá una confirmación pronto.",
	}
}

// TrackingRequest are the inputs for issuing a tracking guide.
type TrackingRequest struct {
	TicketNumber   string
	CustomerEmail  string
	OrderNumber    string
	Carrier        string
	TrackingNumber string
}

// GenerateTrackingGuide attaches a tracking guide to an existing ticket, or
// opens a tracking ticket when no ticket number is given. The ticket number
// and type never change on the update path.
func (t *Tools) GenerateTrackingGuide(ctx context.Context, traceID string, req TrackingRequest) ToolResponse {
	tracking := req.TrackingNumber
	if tracking == "" {
		tracking = GenerateTrackingNumber()
	}
	guide := fmt.Sprintf("Empresa: %s, Guía: %s", req.Carrier, tracking)

	var ticketNumber string
	if req.TicketNumber != "" {
		existing, err := t.store.GetByNumber(ctx, req.TicketNumber)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ToolResponse{Success: false, Message: fmt.Sprintf("No se encontró el ticket %s", req.TicketNumber)}
			}
			t.tracer.Error(traceID, "GENERATE_TRACKING_GUIDE_ERROR", fmt.Sprintf("Error generando guía de seguimiento: %s", err), nil)
			return failure(err, "Hubo un error al generar la guía de seguimiento")
		}
		existing.TrackingNumber = tracking
		existing.Status = domain.TicketStatusInTransit
		existing.Notes = appendNote(existing.Notes, guide)
		if err := t.update(ctx, existing); err != nil {
			t.tracer.Error(traceID, "GENERATE_TRACKING_GUIDE_ERROR", fmt.Sprintf("Error generando guía de seguimiento: %s", err), nil)
			return failure(err, "Hubo un error al generar la guía de seguimiento")
		}
		ticketNumber = existing.TicketNumber
	} else {
		ticket := &domain.Ticket{
			ID:             uuid.NewString(),
			TicketNumber:   GenerateTicketNumber(),
			Type:           domain.TicketTypeTracking,
			Status:         domain.TicketStatusActive,
			Priority:       domain.TicketPriorityNormal,
			Title:          fmt.Sprintf("Guía de seguimiento para pedido %s", req.OrderNumber),
			Description:    fmt.Sprintf("Cliente solicita información de seguimiento. Pedido: %s, Empresa: %s", req.OrderNumber, req.Carrier),
			CustomerEmail:  req.CustomerEmail,
			TrackingNumber: tracking,
			Notes:          guide,
		}
		if err := t.create(ctx, ticket); err != nil {
			t.tracer.Error(traceID, "GENERATE_TRACKING_GUIDE_ERROR", fmt.Sprintf("Error generando guía de seguimiento: %s", err), nil)
			return failure(err, "Hubo un error al generar la guía de seguimiento")
		}
		ticketNumber = ticket.TicketNumber
	}

	t.publish(ctx, events.EventTrackingAttached, ticketNumber, events.TrackingAttachedPayload{
		TrackingNumber: tracking,
		Carrier:        req.Carrier,
	})
	t.tracer.Info(traceID, "GENERATE_TRACKING_GUIDE", fmt.Sprintf("Guía de seguimiento generada: %s", tracking),
		map[string]any{"numero_seguimiento": tracking})
	return ToolResponse{
		Success:        true,
		TicketNumber:   ticketNumber,
		TrackingNumber: tracking,
		Message:        fmt.Sprintf("Guía de seguimiento generada: %s", tracking),
		Instructions:   fmt.Sprintf("Puede rastrear su pedido usando el número: %s", tracking),
	}
}

// TrackingQuery are the lookup keys for a tracking status question, tried in
// order: tracking number, then ticket number, then customer email.
type TrackingQuery struct {
	TrackingNumber string
	TicketNumber   string
	CustomerEmail  string
}

// TrackingStatus reports the shipment status of the newest matching ticket.
func (t *Tools) TrackingStatus(ctx context.Context, traceID string, q TrackingQuery) ToolResponse {
	var tickets []domain.Ticket

	switch {
	case q.TrackingNumber != "":
		found, err := t.store.ListWithFilter(ctx, repository.TicketFilter{TrackingNumber: &q.TrackingNumber})
		if err != nil {
			t.tracer.Error(traceID, "QUERY_TRACKING_ERROR", fmt.Sprintf("Error consultando seguimiento: %s", err), nil)
			return failure(err, "Hubo un error al consultar el seguimiento")
		}
		tickets = found
	case q.TicketNumber != "":
		ticket, err := t.store.GetByNumber(ctx, q.TicketNumber)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			t.tracer.Error(traceID, "QUERY_TRACKING_ERROR", fmt.Sprintf("Error consultando seguimiento: %s", err), nil)
			return failure(err, "Hubo un error al consultar el seguimiento")
		}
		if ticket != nil {
			tickets = []domain.Ticket{*ticket}
		}
	case q.CustomerEmail != "":
		found, err := t.store.ListWithFilter(ctx, repository.TicketFilter{CustomerEmail: &q.CustomerEmail})
		if err != nil {
			t.tracer.Error(traceID, "QUERY_TRACKING_ERROR", fmt.Sprintf("Error consultando seguimiento: %s", err), nil)
			return failure(err, "Hubo un error al consultar el seguimiento")
		}
		tickets = found
	}

	if len(tickets) == 0 {
		return ToolResponse{
			Success:        false,
			TrackingNumber: q.TrackingNumber,
			Message:        "No se encontró información de seguimiento",
		}
	}

	// Listing is newest-first, so the head is the latest ticket.
	ticket := tickets[0]
	return ToolResponse{
		Success:        true,
		TicketNumber:   ticket.TicketNumber,
		TrackingNumber: orNA(ticket.TrackingNumber),
		Status:         orNA(ticket.Status),
		Message:        fmt.Sprintf("El estado de su pedido es: %s", orNA(ticket.Status)),
	}
}

// InvoiceRequest are the inputs for an invoice information request.
type InvoiceRequest struct {
	InvoiceNumber string
	CustomerEmail string
	TicketNumber  string
}

// RequestInvoice finds an existing invoice ticket for the customer or opens
// one so a representative can follow up.
func (t *Tools) RequestInvoice(ctx context.Context, traceID string, req InvoiceRequest) ToolResponse {
	var tickets []domain.Ticket

	switch {
	case req.InvoiceNumber != "" || req.CustomerEmail != "":
		filter := repository.TicketFilter{}
		if req.CustomerEmail != "" {
			filter.CustomerEmail = &req.CustomerEmail
		}
		found, err := t.store.ListWithFilter(ctx, filter)
		if err != nil {
			t.tracer.Error(traceID, "GET_INVOICE_ERROR", fmt.Sprintf("Error obteniendo factura: %s", err), nil)
			return failure(err, "Hubo un error al obtener la información de la factura")
		}
		if req.InvoiceNumber != "" {
			kept := found[:0]
			for _, tk := range found {
				if tk.InvoiceNumber == req.InvoiceNumber {
					kept = append(kept, tk)
				}
			}
			found = kept
		}
		tickets = found
	case req.TicketNumber != "":
		ticket, err := t.store.GetByNumber(ctx, req.TicketNumber)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			t.tracer.Error(traceID, "GET_INVOICE_ERROR", fmt.Sprintf("Error obteniendo factura: %s", err), nil)
			return failure(err, "Hubo un error al obtener la información de la factura")
		}
		if ticket != nil {
			tickets = []domain.Ticket{*ticket}
		}
	}

	if len(tickets) == 0 && req.CustomerEmail == "" && req.InvoiceNumber == "" {
		return ToolResponse{Success: false, Message: "No se encontró información de la factura"}
	}

	var invoiceTicket *domain.Ticket
	for i := range tickets {
		if tickets[i].Type == domain.TicketTypeInvoice {
			invoiceTicket = &tickets[i]
			break
		}
	}

	if invoiceTicket == nil {
		label := req.InvoiceNumber
		if label == "" {
			label = "Consulta"
		}
		created := &domain.Ticket{
			ID:            uuid.NewString(),
			TicketNumber:  GenerateTicketNumber(),
			Type:          domain.TicketTypeInvoice,
			Status:        domain.TicketStatusPending,
			Priority:      domain.TicketPriorityNormal,
			Title:         fmt.Sprintf("Solicitud de factura: %s", label),
			Description:   fmt.Sprintf("Cliente solicita información sobre factura %s", req.InvoiceNumber),
			CustomerEmail: req.CustomerEmail,
			InvoiceNumber: req.InvoiceNumber,
		}
		if err := t.create(ctx, created); err != nil {
			t.tracer.Error(traceID, "GET_INVOICE_ERROR", fmt.Sprintf("Error obteniendo factura: %s", err), nil)
			return failure(err, "Hubo un error al obtener la información de la factura")
		}
		invoiceTicket = created
	}

	return ToolResponse{
		Success:      true,
		TicketNumber: invoiceTicket.TicketNumber,
		Message:      fmt.Sprintf("Se ha generado un ticket para la solicitud de factura: %s", invoiceTicket.TicketNumber),
		Instructions: "Un representante le enviará la información de la factura pronto.",
	}
}

// ComplaintRequest are the inputs for a complaint, claim or praise ticket.
type ComplaintRequest struct {
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Kind          string
	Description   string
	ProductRef    string
	InvoiceNumber string
	Notes         string
}

// CreateComplaint opens a complaint ticket. Complaints and claims take high
// priority; praise stays normal.
func (t *Tools) CreateComplaint(ctx context.Context, traceID string, req ComplaintRequest) ToolResponse {
	priority := domain.TicketPriorityNormal
	if req.Kind == "queja" || req.Kind == "reclamo" {
		priority = domain.TicketPriorityHigh
	}
	notes := req.Notes
	if notes == "" {
		notes = fmt.Sprintf("Tipo: %s", req.Kind)
	}
	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		TicketNumber:  GenerateTicketNumber(),
		Type:          domain.TicketTypeFeedback,
		Status:        domain.TicketStatusOpen,
		Priority:      priority,
		Title:         fmt.Sprintf("%s: %s", title(req.Kind), truncate(req.Description, 50)),
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ProductRef:    req.ProductRef,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         notes,
	}
	if err := t.create(ctx, ticket); err != nil {
		t.tracer.Error(traceID, "CREATE_COMPLAINT_TICKET_ERROR", fmt.Sprintf("Error creando ticket de queja: %s", err), nil)
		return failure(err, "Hubo un error al crear el ticket")
	}
	t.tracer.Info(traceID, "CREATE_COMPLAINT_TICKET", fmt.Sprintf("Ticket de %s creado: %s", req.Kind, ticket.TicketNumber),
		map[string]any{"ticket_number": ticket.TicketNumber, "tipo": req.Kind})
	return ToolResponse{
		Success:      true,
		TicketNumber: ticket.TicketNumber,
		Message:      fmt.Sprintf("Su %s ha sido registrada. Número de ticket: %s", req.Kind, ticket.TicketNumber),
		Instructions: "Un representante revisará su caso y se comunicará con usted pronto.",
	}
}

// GenerateReturnLabel issues a pickup label for an existing return ticket.
// Only return tickets accept labels.
func (t *Tools) GenerateReturnLabel(ctx context.Context, traceID string, ticketNumber, pickupAddress, notes string) ToolResponse {
	ticket, err := t.store.GetByNumber(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ToolResponse{Success: false, Message: fmt.Sprintf("No se encontró el ticket %s", ticketNumber)}
		}
		t.tracer.Error(traceID, "GENERATE_RETURN_LABEL_ERROR", fmt.Sprintf("Error generando etiqueta: %s", err), nil)
		return failure(err, "Hubo un error al generar la etiqueta de devolución")
	}
	if ticket.Type != domain.TicketTypeReturn {
		return ToolResponse{Success: false, Message: "Este ticket no es de devolución"}
	}

	label := GenerateLabelNumber()
	address := pickupAddress
	if address == "" {
		address = "Pendiente"
	}
	ticket.Status = "procesado"
	ticket.LabelNumber = label
	ticket.Notes = appendNote(ticket.Notes, fmt.Sprintf("Etiqueta de devolución: %s, Dirección: %s", label, address))
	if notes != "" {
		ticket.Notes = appendNote(ticket.Notes, notes)
	}
	if err := t.update(ctx, ticket); err != nil {
		t.tracer.Error(traceID, "GENERATE_RETURN_LABEL_ERROR", fmt.Sprintf("Error generando etiqueta: %s", err), nil)
		return failure(err, "Hubo un error al generar la etiqueta de devolución")
	}

	t.publish(ctx, events.EventLabelGenerated, ticketNumber, events.LabelGeneratedPayload{
		LabelNumber:   label,
		PickupAddress: address,
	})
	t.tracer.Info(traceID, "GENERATE_RETURN_LABEL", fmt.Sprintf("Etiqueta de devolución generada: %s", label),
		map[string]any{"ticket_number": ticketNumber, "etiqueta": label})
	return ToolResponse{
		Success:      true,
		TicketNumber: ticketNumber,
		LabelNumber:  label,
		Message:      fmt.Sprintf("Etiqueta de devolución generada: %s", label),
		Instructions: fmt.Sprintf("Use el número %s para el retiro del producto.", label),
	}
}

// TicketQuery are the lookup parameters for consulting existing tickets. An
// exact ticket number takes precedence over every other filter.
type TicketQuery struct {
	TicketNumber  string
	CustomerEmail string
	Status        string
	Type          string
}

// QueryTickets looks up existing tickets.
func (t *Tools) QueryTickets(ctx context.Context, traceID string, q TicketQuery) ToolResponse {
	if q.TicketNumber != "" {
		ticket, err := t.store.GetByNumber(ctx, q.TicketNumber)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ToolResponse{Success: false, Message: fmt.Sprintf("No se encontró el ticket %s", q.TicketNumber), Tickets: []FormattedTicket{}}
			}
			t.tracer.Error(traceID, "QUERY_TICKET_ERROR", fmt.Sprintf("Error consultando tickets: %s", err), nil)
			resp := failure(err, "Hubo un error al consultar los tickets")
			resp.Tickets = []FormattedTicket{}
			return resp
		}
		return ToolResponse{
			Success: true,
			Total:   1,
			Message: fmt.Sprintf("Ticket %s encontrado", q.TicketNumber),
			Tickets: []FormattedTicket{formatTicket(*ticket)},
		}
	}

	filter := repository.TicketFilter{}
	if q.CustomerEmail != "" {
		filter.CustomerEmail = &q.CustomerEmail
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}
	tickets, err := t.store.ListWithFilter(ctx, filter)
	if err != nil {
		t.tracer.Error(traceID, "QUERY_TICKET_ERROR", fmt.Sprintf("Error consultando tickets: %s", err), nil)
		resp := failure(err, "Hubo un error al consultar los tickets")
		resp.Tickets = []FormattedTicket{}
		return resp
	}

	if q.Type != "" {
		kept := tickets[:0]
		for _, tk := range tickets {
			if string(tk.Type) == q.Type {
				kept = append(kept, tk)
			}
		}
		tickets = kept
	}

	if len(tickets) == 0 {
		return ToolResponse{Success: false, Message: "No se encontraron tickets", Tickets: []FormattedTicket{}}
	}

	formatted := make([]FormattedTicket, 0, len(tickets))
	for _, tk := range tickets {
		formatted = append(formatted, formatTicket(tk))
	}
	return ToolResponse{
		Success: true,
		Total:   len(formatted),
		Message: fmt.Sprintf("Se encontraron %d ticket(s)", len(formatted)),
		Tickets: formatted,
	}
}

// HandleCreate routes a free-text creation request to the right tool based
// on keywords, extracting contact details from the text itself.
func (t *Tools) HandleCreate(ctx context.Context, traceID, query string) ToolResponse {
	info := ExtractClientInfo(query)
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "devol") || strings.Contains(lower, "reembolso"):
		return t.CreateReturn(ctx, traceID, ReturnRequest{
			CustomerEmail: info.Email,
			CustomerName:  info.Name,
			CustomerPhone: info.Phone,
			ProductRef:    strings.Join(extractProducts(query), ", "),
			InvoiceNumber: ExtractInvoiceNumber(query),
			Reason:        ExtractReturnReason(query),
		})
	case strings.Contains(lower, "queja") || strings.Contains(lower, "reclamo") || strings.Contains(lower, "felicitaci"):
		kind := "queja"
		if strings.Contains(lower, "reclamo") {
			kind = "reclamo"
		} else if strings.Contains(lower, "felicitaci") {
			kind = "felicitacion"
		}
		return t.CreateComplaint(ctx, traceID, ComplaintRequest{
			CustomerEmail: info.Email,
			CustomerName:  info.Name,
			CustomerPhone: info.Phone,
			Kind:          kind,
			Description:   query,
		})
	case strings.Contains(lower, "factura"):
		return t.RequestInvoice(ctx, traceID, InvoiceRequest{
			InvoiceNumber: ExtractInvoiceNumber(query),
			CustomerEmail: info.Email,
		})
	case strings.Contains(lower, "seguimiento") || strings.Contains(lower, "rastrear") || strings.Contains(lower, "envío") || strings.Contains(lower, "envio"):
		return t.GenerateTrackingGuide(ctx, traceID, TrackingRequest{
			CustomerEmail:  info.Email,
			TrackingNumber: ExtractTrackingNumber(query),
		})
	default:
		return t.CreatePurchase(ctx, traceID, PurchaseRequest{
			CustomerEmail: info.Email,
			CustomerName:  info.Name,
			CustomerPhone: info.Phone,
			Products:      query,
		})
	}
}

// HandleQuery routes a free-text consultation to the right lookup. A ticket
// number in the text beats an email; tracking tokens go to the tracking
// lookup.
func (t *Tools) HandleQuery(ctx context.Context, traceID, query string) ToolResponse {
	if tracking := ExtractTrackingNumber(query); tracking != "" {
		return t.TrackingStatus(ctx, traceID, TrackingQuery{TrackingNumber: tracking})
	}
	info := ExtractClientInfo(query)
	return t.QueryTickets(ctx, traceID, TicketQuery{
		TicketNumber:  ExtractTicketNumber(query),
		CustomerEmail: info.Email,
	})
}

func (t *Tools) create(ctx context.Context, ticket *domain.Ticket) error {
	err := repository.WithRetry(ctx, t.retry, func(ctx context.Context) error {
		return t.store.Create(ctx, ticket)
	})
	if err != nil {
		return err
	}
	t.publish(ctx, events.EventTicketCreated, ticket.TicketNumber, events.TicketCreatedPayload{
		TicketType:    ticket.Type,
		Priority:      ticket.Priority,
		CustomerEmail: ticket.CustomerEmail,
		Title:         ticket.Title,
	})
	return nil
}

func (t *Tools) update(ctx context.Context, ticket *domain.Ticket) error {
	err := repository.WithRetry(ctx, t.retry, func(ctx context.Context) error {
		return t.store.Update(ctx, ticket)
	})
	if err != nil {
		return err
	}
	t.publish(ctx, events.EventTicketUpdated, ticket.TicketNumber, events.TicketUpdatedPayload{Status: ticket.Status})
	return nil
}

func (t *Tools) publish(ctx context.Context, eventType events.EventType, ticketNumber string, payload any) {
	if t.events == nil {
		return
	}
	_ = t.events.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketNumber: ticketNumber,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	})
}

// FormatTicket renders a ticket in the customer-facing shape.
func FormatTicket(t domain.Ticket) FormattedTicket {
	return formatTicket(t)
}

func formatTicket(t domain.Ticket) FormattedTicket {
	resolved := "No resuelto"
	if t.ResolvedAt != nil {
		resolved = t.ResolvedAt.Format(time.RFC3339)
	}
	quantity := "N/A"
	if t.Quantity > 0 {
		quantity = fmt.Sprintf("%d", t.Quantity)
	}
	total := "N/A"
	if t.Total > 0 {
		total = fmt.Sprintf("%.2f", t.Total)
	}
	return FormattedTicket{
		Number:         orNA(t.TicketNumber),
		Type:           orNA(string(t.Type)),
		Status:         orNA(t.Status),
		Priority:       orNA(string(t.Priority)),
		Title:          orNA(t.Title),
		Description:    orNA(t.Description),
		CustomerName:   orNA(t.CustomerName),
		CustomerEmail:  orNA(t.CustomerEmail),
		CustomerPhone:  orNA(t.CustomerPhone),
		ProductRef:     orNA(t.ProductRef),
		InvoiceNumber:  orNA(t.InvoiceNumber),
		Quantity:       quantity,
		Total:          total,
		TrackingNumber: orNA(t.TrackingNumber),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
		ResolvedAt:     resolved,
	}
}

func failure(err error, message string) ToolResponse {
	return ToolResponse{Success: false, Err: err.Error(), Message: message}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func title(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

var productWords = []string{"botella", "bolsa", "cepillo", "cargador", "jabón", "jabon", "termo", "panel"}

func extractProducts(query string) []string {
	lower := strings.ToLower(query)
	var found []string
	for _, w := range productWords {
		if strings.Contains(lower, w) {
			found = append(found, w)
		}
	}
	return found
}
