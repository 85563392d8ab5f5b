package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecomarket-assistant/internal/api/dto"
	"github.com/spec-kit/ecomarket-assistant/internal/auth"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

const defaultTraceLimit = 50

// AdminHandler exposes the tracing and ticket panel behind the admin login.
type AdminHandler struct {
	authenticator *auth.Authenticator
	tracer        *observability.Tracer
	store         repository.TicketStore
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authenticator *auth.Authenticator, tracer *observability.Tracer, store repository.TicketStore) *AdminHandler {
	return &AdminHandler{authenticator: authenticator, tracer: tracer, store: store}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInputMalformed("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewInputMalformed("username and password required", nil)
	}

	token, expiresAt, err := h.authenticator.Login(req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt}})
}

// Traces handles GET /admin/traces. One filter applies at a time:
// trace_id, operation or level; otherwise the most recent records.
func (h *AdminHandler) Traces(c *fiber.Ctx) error {
	var records []observability.TraceRecord
	switch {
	case c.Query("trace_id") != "":
		records = h.tracer.ByTraceID(c.Query("trace_id"))
	case c.Query("operation") != "":
		records = h.tracer.ByOperation(c.Query("operation"))
	case c.Query("level") != "":
		records = h.tracer.ByLevel(c.Query("level"))
	default:
		records = h.tracer.Recent(queryInt(c, "limit", defaultTraceLimit))
	}

	return c.JSON(fiber.Map{"total": len(records), "traces": records})
}

// TraceStats handles GET /admin/traces/stats.
func (h *AdminHandler) TraceStats(c *fiber.Ctx) error {
	return c.JSON(h.tracer.Stats())
}

// ClearTraces handles DELETE /admin/traces.
func (h *AdminHandler) ClearTraces(c *fiber.Ctx) error {
	h.tracer.Clear()
	return c.JSON(fiber.Map{"status": "cleared"})
}

// Tickets handles GET /admin/tickets with optional estado, tipo and email
// filters.
func (h *AdminHandler) Tickets(c *fiber.Ctx) error {
	filter := repository.TicketFilter{Limit: queryInt(c, "limit", 100)}
	if estado := c.Query("estado"); estado != "" {
		filter.Status = &estado
	}
	if tipo := c.Query("tipo"); tipo != "" {
		t := domain.TicketType(tipo)
		filter.Type = &t
	}
	if email := c.Query("email"); email != "" {
		filter.CustomerEmail = &email
	}

	list, err := h.store.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return apperrors.MapError(err)
	}

	formatted := make([]tickets.FormattedTicket, 0, len(list))
	for _, t := range list {
		formatted = append(formatted, tickets.FormatTicket(t))
	}
	return c.JSON(dto.AdminTicketsResponse{Total: len(formatted), Tickets: formatted})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
