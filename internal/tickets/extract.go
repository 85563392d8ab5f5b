package tickets

import (
	"regexp"
	"strings"
)

// ClientInfo holds contact details pulled out of a free-text query. Any
// subset may be empty when the text does not carry it.
type ClientInfo struct {
	Email string
	Name  string
	Phone string
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Phone formats in the order they are tried. First match wins.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,4}[\s-]?\d{7,10}`),
		regexp.MustCompile(`\d{10}`),
		regexp.MustCompile(`\(?\d{3}\)?[\s-]?\d{3}[\s-]?\d{4}`),
	}

	// Name introductions in the order they are tried.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:me llamo|mi nombre es|soy) ([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?: [A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*)`),
	}

	ticketNumberPattern   = regexp.MustCompile(`TKT-\d+-[0-9A-F]{8}`)
	trackingNumberPattern = regexp.MustCompile(`GS-TKT-\d+-[0-9A-F]{8}`)
	invoiceNumberPattern  = regexp.MustCompile(`(?i)factura\s*(?:n[uú]mero|nro\.?|#|:)?\s*([A-Z0-9][A-Z0-9-]{2,})`)
)

// ExtractClientInfo pulls email, phone and name from a query.
func ExtractClientInfo(query string) ClientInfo {
	info := ClientInfo{}
	if m := emailPattern.FindString(query); m != "" {
		info.Email = m
	}
	for _, p := range phonePatterns {
		if m := p.FindString(query); m != "" {
			info.Phone = m
			break
		}
	}
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			info.Name = m[1]
			break
		}
	}
	return info
}

// ExtractTicketNumber returns the first ticket-number token in the text, or
// empty when there is none.
func ExtractTicketNumber(query string) string {
	return ticketNumberPattern.FindString(query)
}

// ExtractTrackingNumber returns the first tracking-guide token in the text.
func ExtractTrackingNumber(query string) string {
	return trackingNumberPattern.FindString(query)
}

// ExtractInvoiceNumber returns the invoice reference that follows a
// "factura" mention, or empty.
func ExtractInvoiceNumber(query string) string {
	if m := invoiceNumberPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// TicketIntent separates queries about existing tickets from requests to
// open new ones.
type TicketIntent string

const (
	IntentQuery  TicketIntent = "query"
	IntentCreate TicketIntent = "create"
)

var (
	// Word boundaries keep "ver" from firing inside "devolver".
	queryIntentPattern  = regexp.MustCompile(`\b(consultar?|ver|estado|revisar|mostrar)\b|c[oó]mo va`)
	createIntentPattern = regexp.MustCompile(`devol|reembolso|queja|reclamo|felicitaci|compr[aeé]`)
)

// DetectTicketIntent decides between querying an existing ticket and
// creating a new one. A ticket-number token anywhere in the text is
// conclusive for query, no matter what other verbs appear; ambiguity also
// resolves to query so a repeated question never opens a duplicate ticket.
func DetectTicketIntent(query string) TicketIntent {
	if ExtractTicketNumber(query) != "" {
		return IntentQuery
	}
	lower := strings.ToLower(query)
	if queryIntentPattern.MatchString(lower) {
		return IntentQuery
	}
	if createIntentPattern.MatchString(lower) {
		return IntentCreate
	}
	return IntentQuery
}

// ReturnReason pulls the motive phrase out of a return request, trying the
// explicit "motivo:" label first and falling back to known defect words.
var (
	reasonLabelPattern = regexp.MustCompile(`(?i)motivo\s*:?\s*([^,.;]+)`)
	reasonKeywords     = []string{"defectuoso", "dañado", "danado", "roto", "no corresponde", "no funciona", "equivocado", "incompleto"}
)

// ExtractReturnReason returns the stated motive for a return, or empty when
// the text does not give one.
func ExtractReturnReason(query string) string {
	if m := reasonLabelPattern.FindStringSubmatch(query); m != nil {
		return strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(query)
	for _, kw := range reasonKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
