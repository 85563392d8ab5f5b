package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientInfo(t *testing.T) {
	info := ExtractClientInfo("Hola, me llamo Ana Torres, mi correo es ana.torres@example.com y mi celular 310 555 1234")

	assert.Equal(t, "ana.torres@example.com", info.Email)
	assert.Equal(t, "Ana Torres", info.Name)
	assert.NotEmpty(t, info.Phone)
}

func TestExtractClientInfoPartial(t *testing.T) {
	info := ExtractClientInfo("quiero saber el estado de mi pedido")

	assert.Empty(t, info.Email)
	assert.Empty(t, info.Name)
	assert.Empty(t, info.Phone)
}

func TestExtractTicketNumber(t *testing.T) {
	assert.Equal(t, "TKT-1700000000-AB12CD34", ExtractTicketNumber("mi ticket es TKT-1700000000-AB12CD34 gracias"))
	assert.Empty(t, ExtractTicketNumber("mi ticket es tkt-123"), "lowercase tokens are not ticket numbers")
}

func TestExtractTrackingNumber(t *testing.T) {
	assert.Equal(t, "GS-TKT-1700000000-AB12CD34", ExtractTrackingNumber("la guía GS-TKT-1700000000-AB12CD34 no aparece"))
}

func TestExtractInvoiceNumber(t *testing.T) {
	assert.Equal(t, "FAC-2024-001", ExtractInvoiceNumber("necesito la factura número FAC-2024-001"))
	assert.Empty(t, ExtractInvoiceNumber("necesito una factura"))
}

func TestDetectTicketIntentNumberWins(t *testing.T) {
	// A ticket number is conclusive even next to creation verbs.
	intent := DetectTicketIntent("quiero devolver mi compra, ticket TKT-1700000000-AB12CD34")
	assert.Equal(t, IntentQuery, intent)
}

func TestDetectTicketIntentKeywords(t *testing.T) {
	assert.Equal(t, IntentQuery, DetectTicketIntent("quiero consultar mi ticket"))
	assert.Equal(t, IntentQuery, DetectTicketIntent("ver el estado de mi ticket"))
	assert.Equal(t, IntentCreate, DetectTicketIntent("quiero devolver la botella"))
	assert.Equal(t, IntentCreate, DetectTicketIntent("tengo un reclamo del servicio"))
}

func TestDetectTicketIntentAmbiguousDefaultsToQuery(t *testing.T) {
	assert.Equal(t, IntentQuery, DetectTicketIntent("necesito ayuda con mi ticket"))
}

func TestExtractReturnReason(t *testing.T) {
	assert.Equal(t, "producto vencido", ExtractReturnReason("quiero devolverlo, motivo: producto vencido, gracias"))
	assert.Equal(t, "defectuoso", ExtractReturnReason("el cargador llegó defectuoso"))
	assert.Empty(t, ExtractReturnReason("quiero devolver esto"))
}
