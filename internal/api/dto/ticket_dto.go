package dto

import "github.com/spec-kit/ecomarket-assistant/internal/tickets"

// AdminTicketsResponse is the admin panel's ticket listing.
type AdminTicketsResponse struct {
	Total   int                       `json:"total"`
	Tickets []tickets.FormattedTicket `json:"tickets"`
}
