package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

// memoryTicketStore keeps tickets in process memory. It backs runs without a
// POSTGRES_DSN and the package tests. Semantics mirror the postgres store,
// including pgx.ErrNoRows for absent tickets.
type memoryTicketStore struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemoryTicketStore builds an empty in-process store.
func NewMemoryTicketStore() TicketStore {
	return &memoryTicketStore{tickets: make(map[string]domain.Ticket)}
}

func (m *memoryTicketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	m.tickets[ticket.TicketNumber] = *ticket
	return nil
}

func (m *memoryTicketStore) Update(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tickets[ticket.TicketNumber]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := *ticket
	updated.ID = stored.ID
	updated.Type = stored.Type
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	m.tickets[ticket.TicketNumber] = updated
	return nil
}

func (m *memoryTicketStore) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (m *memoryTicketStore) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.Ticket
	for _, ticket := range m.tickets {
		if filter.Type != nil && ticket.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		if filter.CustomerEmail != nil &&
			!strings.EqualFold(strings.TrimSpace(*filter.CustomerEmail), ticket.CustomerEmail) {
			continue
		}
		if filter.TrackingNumber != nil && ticket.TrackingNumber != *filter.TrackingNumber {
			continue
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			haystack := strings.ToLower(ticket.Title + " " + ticket.Description + " " + ticket.ProductRef)
			if !strings.Contains(haystack, term) {
				continue
			}
		}
		result = append(result, ticket)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *memoryTicketStore) Delete(_ context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[number]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, number)
	return nil
}
