package tickets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

// Legacy delimited return commands. These accept either the semicolon
// format the original storefront widget emits or a natural-language phrase,
// and answer with a single customer-facing line.

var eligibleReasons = []string{"defectuoso", "dañado", "no corresponde"}

var (
	legacyOrderPattern       = regexp.MustCompile(`pedido\s*(\d+)`)
	legacyEligProductPattern = regexp.MustCompile(`(?:el|la|los|las)\s+([a-záéíóúñ\s]+?)\s*(?:del|de|porque|por|que|llegó|dañado|defectuoso|no corresponde|$)`)
	legacyProductPattern     = regexp.MustCompile(`(?:el|la|los|las)\s+([a-záéíóúñ\s]+?)\s*(?:del|de|porque|por|que|$)`)
	legacyReasonPattern      = regexp.MustCompile(`(dañado|defectuoso|no corresponde)`)
	legacyRefundPattern      = regexp.MustCompile(`(?:reembolso|devolver|compré|quiero un reembolso por|quiero reembolso de)\s*(?:el|la|los|las)?\s*([a-záéíóúñ\s]+?)\s*(?:por)?\s*\$?(\d+(?:\.\d{1,2})?)`)
)

// CheckReturnEligibility answers whether a product can be returned. Input is
// "pedido; producto; fecha; motivo" or free text; the motive is split last
// so it keeps its internal separators.
func CheckReturnEligibility(input string) string {
	order, product, motive := "desconocido", "producto no identificado", "motivo no especificado"

	if strings.Contains(input, ";") {
		parts := splitTrim(input, 4)
		if len(parts) != 4 {
			return "⚠️ Formato incorrecto. Usa: pedido; producto; fecha; motivo"
		}
		order, product, motive = parts[0], parts[1], parts[3]
	} else {
		lower := strings.ToLower(input)
		if m := legacyOrderPattern.FindStringSubmatch(lower); m != nil {
			order = m[1]
		}
		if m := legacyEligProductPattern.FindStringSubmatch(lower); m != nil {
			product = strings.TrimSpace(m[1])
		}
		if m := legacyReasonPattern.FindStringSubmatch(lower); m != nil {
			motive = m[1]
		}
	}

	for _, r := range eligibleReasons {
		if strings.EqualFold(motive, r) {
			return fmt.Sprintf("✅ El producto '%s' del pedido %s es elegible para devolución por el motivo: %s.", product, order, motive)
		}
	}
	return fmt.Sprintf("❌ El producto '%s' del pedido %s no cumple los criterios de devolución por el motivo: %s.", product, order, motive)
}

// EstimateRefund computes the estimated refund amount. Input is
// "producto; cantidad; precio" or free text with a price.
func EstimateRefund(input string) string {
	var (
		product  string
		quantity int
		price    float64
	)

	if strings.Contains(input, ";") {
		parts := splitTrim(input, 3)
		if len(parts) != 3 {
			return "⚠️ Formato incorrecto. Usa: producto; cantidad; precio"
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil {
			return "⚠️ Cantidad y precio deben ser números. Usa: producto; cantidad; precio"
		}
		prc, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return "⚠️ Cantidad y precio deben ser números. Usa: producto; cantidad; precio"
		}
		product, quantity, price = parts[0], qty, prc
	} else {
		m := legacyRefundPattern.FindStringSubmatch(strings.ToLower(input))
		if m == nil {
			return "⚠️ No pude entender los datos para calcular el reembolso. Usa: producto; cantidad; precio o describe claramente el producto y precio."
		}
		product = strings.TrimSpace(m[1])
		quantity = 1
		price, _ = strconv.ParseFloat(m[2], 64)
	}

	return fmt.Sprintf("💵 Monto estimado de reembolso para %d x '%s': $%.2f", quantity, product, float64(quantity)*price)
}

// RegisterReturnRequest persists a return request as a ticket. Input is
// "pedido; producto; motivo" or free text.
func (t *Tools) RegisterReturnRequest(ctx context.Context, traceID, input string) string {
	order, product, motive := "desconocido", "producto no identificado", "motivo no especificado"

	if strings.Contains(input, ";") {
		parts := splitTrim(input, 3)
		if len(parts) != 3 {
			return "⚠️ Formato incorrecto. Usa: pedido; producto; motivo"
		}
		order, product, motive = parts[0], parts[1], parts[2]
	} else {
		lower := strings.ToLower(input)
		if m := legacyOrderPattern.FindStringSubmatch(lower); m != nil {
			order = m[1]
		}
		if m := legacyProductPattern.FindStringSubmatch(lower); m != nil {
			product = strings.TrimSpace(m[1])
		}
		if m := legacyReasonPattern.FindStringSubmatch(lower); m != nil {
			motive = m[1]
		}
	}

	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: GenerateTicketNumber(),
		Type:         domain.TicketTypeReturn,
		Status:       domain.TicketStatusPending,
		Priority:     domain.TicketPriorityHigh,
		Title:        fmt.Sprintf("Devolución de producto: %s", product),
		Description:  fmt.Sprintf("Solicitud de devolución para '%s' del pedido %s. Motivo: %s", product, order, motive),
		ProductRef:   product,
		ReturnReason: motive,
		Notes:        fmt.Sprintf("Pedido: %s", order),
	}
	if err := t.create(ctx, ticket); err != nil {
		t.tracer.Error(traceID, "REGISTER_RETURN_REQUEST_ERROR", fmt.Sprintf("Error registrando solicitud: %s", err), nil)
		return fmt.Sprintf("❌ Error al registrar la solicitud: %s", err)
	}
	t.tracer.Info(traceID, "REGISTER_RETURN_REQUEST", fmt.Sprintf("Solicitud de devolución registrada: %s", ticket.TicketNumber),
		map[string]any{"ticket_number": ticket.TicketNumber, "pedido": order})
	return fmt.Sprintf("📝 Solicitud registrada para '%s' del pedido %s con motivo: %s.", product, order, motive)
}

func splitTrim(input string, n int) []string {
	parts := strings.SplitN(input, ";", n)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
