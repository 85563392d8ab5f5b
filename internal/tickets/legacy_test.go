package tickets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
)

func TestCheckReturnEligibilityDelimited(t *testing.T) {
	got := CheckReturnEligibility("1234; Botella Reutilizable; 2024-05-01; defectuoso")
	assert.Equal(t, "✅ El producto 'Botella Reutilizable' del pedido 1234 es elegible para devolución por el motivo: defectuoso.", got)

	got = CheckReturnEligibility("1234; Botella Reutilizable; 2024-05-01; me aburrió")
	assert.Equal(t, "❌ El producto 'Botella Reutilizable' del pedido 1234 no cumple los criterios de devolución por el motivo: me aburrió.", got)
}

func TestCheckReturnEligibilityMotiveKeepsSeparators(t *testing.T) {
	// Only the first three separators split; the motive keeps the rest.
	got := CheckReturnEligibility("1234; Termo; 2024-05-01; llegó roto; tapa suelta")
	assert.Contains(t, got, "llegó roto; tapa suelta")
}

func TestCheckReturnEligibilityWrongArity(t *testing.T) {
	got := CheckReturnEligibility("1234; Termo")
	assert.Equal(t, "⚠️ Formato incorrecto. Usa: pedido; producto; fecha; motivo", got)
}

func TestCheckReturnEligibilityNaturalLanguage(t *testing.T) {
	got := CheckReturnEligibility("quiero devolver la botella del pedido 987 porque llegó dañado")
	assert.Contains(t, got, "✅")
	assert.Contains(t, got, "pedido 987")
	assert.Contains(t, got, "dañado")
}

func TestEstimateRefundDelimited(t *testing.T) {
	got := EstimateRefund("Jabon; 3; 15.75")
	assert.Equal(t, "💵 Monto estimado de reembolso para 3 x 'Jabon': $47.25", got)
}

func TestEstimateRefundNonNumeric(t *testing.T) {
	got := EstimateRefund("Jabon; tres; 15.75")
	assert.Equal(t, "⚠️ Cantidad y precio deben ser números. Usa: producto; cantidad; precio", got)

	got = EstimateRefund("Jabon; 3; caro")
	assert.Equal(t, "⚠️ Cantidad y precio deben ser números. Usa: producto; cantidad; precio", got)
}

func TestEstimateRefundWrongArity(t *testing.T) {
	got := EstimateRefund("Jabon; 3")
	assert.Equal(t, "⚠️ Formato incorrecto. Usa: producto; cantidad; precio", got)
}

func TestEstimateRefundNaturalLanguage(t *testing.T) {
	got := EstimateRefund("quiero un reembolso por la botella por $25.50")
	assert.Contains(t, got, "1 x")
	assert.Contains(t, got, "$25.50")

	got = EstimateRefund("hola buenas tardes")
	assert.Contains(t, got, "⚠️ No pude entender los datos")
}

func TestRegisterReturnRequestPersistsTicket(t *testing.T) {
	store := repository.NewMemoryTicketStore()
	tools := NewTools(store, observability.NewTracer(100), repository.DefaultRetryPolicy)

	got := tools.RegisterReturnRequest(context.Background(), "t1", "1234; Cepillo de bambú; defectuoso")
	assert.Equal(t, "📝 Solicitud registrada para 'Cepillo de bambú' del pedido 1234 con motivo: defectuoso.", got)

	tickets, err := store.ListWithFilter(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketTypeReturn, tickets[0].Type)
	assert.Equal(t, "defectuoso", tickets[0].ReturnReason)
	assert.Contains(t, tickets[0].Notes, "1234")
}

func TestRegisterReturnRequestWrongArity(t *testing.T) {
	store := repository.NewMemoryTicketStore()
	tools := NewTools(store, observability.NewTracer(100), repository.DefaultRetryPolicy)

	got := tools.RegisterReturnRequest(context.Background(), "t1", "1234; Cepillo")
	assert.Equal(t, "⚠️ Formato incorrecto. Usa: pedido; producto; motivo", got)

	tickets, err := store.ListWithFilter(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
