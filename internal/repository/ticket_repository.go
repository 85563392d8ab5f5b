package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

// TicketFilter captures lookup parameters for ticket queries.
type TicketFilter struct {
	Type           *domain.TicketType
	Status         *string
	Priority       *domain.TicketPriority
	CustomerEmail  *string
	TrackingNumber *string
	SearchTerm     *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Limit          int
	Offset         int
}

// TicketStore encapsulates ticket persistence. Absent tickets surface as
// pgx.ErrNoRows from every implementation.
type TicketStore interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, number string) error
}

type ticketStore struct {
	pool *pgxpool.Pool
}

// NewTicketStore instantiates the postgres-backed store.
func NewTicketStore(pool *pgxpool.Pool) TicketStore {
	return &ticketStore{pool: pool}
}

func (r *ticketStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, ticket_number, ticket_type, status, priority, title, description,
            customer_email, customer_name, customer_phone, product_ref, quantity, total,
            invoice_number, tracking_number, label_number, return_reason, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.TicketNumber,
		ticket.Type,
		ticket.Status,
		ticket.Priority,
		ticket.Title,
		ticket.Description,
		ticket.CustomerEmail,
		ticket.CustomerName,
		ticket.CustomerPhone,
		ticket.ProductRef,
		ticket.Quantity,
		ticket.Total,
		ticket.InvoiceNumber,
		ticket.TrackingNumber,
		ticket.LabelNumber,
		ticket.ReturnReason,
		ticket.Notes,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketStore) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, title=$3, description=$4, customer_email=$5,
            customer_name=$6, customer_phone=$7, product_ref=$8, quantity=$9, total=$10,
            invoice_number=$11, tracking_number=$12, label_number=$13, return_reason=$14,
            notes=$15, resolved_at=$16, updated_at=NOW()
        WHERE ticket_number=$17`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.Title,
		ticket.Description,
		ticket.CustomerEmail,
		ticket.CustomerName,
		ticket.CustomerPhone,
		ticket.ProductRef,
		ticket.Quantity,
		ticket.Total,
		ticket.InvoiceNumber,
		ticket.TrackingNumber,
		ticket.LabelNumber,
		ticket.ReturnReason,
		ticket.Notes,
		ticket.ResolvedAt,
		ticket.TicketNumber,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketStore) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, ticket_type, status, priority, title, description,
               customer_email, customer_name, customer_phone, product_ref, quantity, total,
               invoice_number, tracking_number, label_number, return_reason, notes,
               created_at, updated_at, resolved_at
        FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketStore) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Type,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Title,
		&ticket.Description,
		&ticket.CustomerEmail,
		&ticket.CustomerName,
		&ticket.CustomerPhone,
		&ticket.ProductRef,
		&ticket.Quantity,
		&ticket.Total,
		&ticket.InvoiceNumber,
		&ticket.TrackingNumber,
		&ticket.LabelNumber,
		&ticket.ReturnReason,
		&ticket.Notes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketStore) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, ticket_number, ticket_type, status, priority, title, description,
                    customer_email, customer_name, customer_phone, product_ref, quantity, total,
                    invoice_number, tracking_number, label_number, return_reason, notes,
                    created_at, updated_at, resolved_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("ticket_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.CustomerEmail != nil {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.CustomerEmail)))
		clauses = append(clauses, fmt.Sprintf("LOWER(customer_email)=$%d", len(args)))
	}
	if filter.TrackingNumber != nil {
		args = append(args, *filter.TrackingNumber)
		clauses = append(clauses, fmt.Sprintf("tracking_number=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(product_ref) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// Newest first so callers can take the head as the latest ticket.
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketStore) Delete(ctx context.Context, number string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE ticket_number=$1`, number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.Type,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Title,
			&ticket.Description,
			&ticket.CustomerEmail,
			&ticket.CustomerName,
			&ticket.CustomerPhone,
			&ticket.ProductRef,
			&ticket.Quantity,
			&ticket.Total,
			&ticket.InvoiceNumber,
			&ticket.TrackingNumber,
			&ticket.LabelNumber,
			&ticket.ReturnReason,
			&ticket.Notes,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
