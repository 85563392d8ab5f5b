package tickets

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateTicketNumber mints a customer-visible ticket number. Numbers are
// unique for the life of the ticket and never reassigned.
func GenerateTicketNumber() string {
	unique := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("TKT-%d-%s", time.Now().Unix(), unique)
}

// GenerateTrackingNumber mints a shipment tracking number.
func GenerateTrackingNumber() string {
	return "GS-" + GenerateTicketNumber()
}

// GenerateLabelNumber mints a return label number.
func GenerateLabelNumber() string {
	return "RET-" + GenerateTicketNumber()
}
