package repository

import (
	"context"
	"errors"
	"fmt"

	"logiq/database"
	"logiq/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, guild_id, user_id, channel_id, subject, status, created_at, closed_at`

// TicketRepository implements service.TicketRepository on PostgreSQL
type TicketRepository struct {
	db *database.DB
	q  queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db, q: db.Pool}
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var ticket models.Ticket
	var status string

	err := row.Scan(
		&ticket.ID,
		&ticket.GuildID,
		&ticket.UserID,
		&ticket.ChannelID,
		&ticket.Subject,
		&status,
		&ticket.CreatedAt,
		&ticket.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.Status = models.TicketStatus(status)

	return &ticket, nil
}

// Create stores ticket under a new ID unless the member already has maxOpen open tickets.
// maxOpen <= 0 disables the cap. The count and insert run under a per-member advisory lock.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket, maxOpen int) (bool, error) {
	id := uuid.NewString()
	inserted := false

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		lock := `SELECT pg_advisory_xact_lock(hashtextextended('tickets:' || $1::text || ':' || $2::text, 0))`
		if _, err := tx.Exec(ctx, lock, ticket.GuildID, ticket.UserID); err != nil {
			return fmt.Errorf("failed to lock open tickets: %w", err)
		}

		query := `
			INSERT INTO tickets (` + ticketColumns + `)
			SELECT $1::text, $2::bigint, $3::bigint, $4::bigint, $5::text, $6::text, $7::timestamptz, $8::timestamptz
			WHERE $9::int <= 0 OR (
				SELECT count(*) FROM tickets
				WHERE guild_id = $2 AND user_id = $3 AND status = 'open'
			) < $9::int
		`
		result, err := tx.Exec(ctx, query,
			id,
			ticket.GuildID,
			ticket.UserID,
			ticket.ChannelID,
			ticket.Subject,
			string(ticket.Status),
			ticket.CreatedAt,
			ticket.ClosedAt,
			maxOpen,
		)
		if err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		inserted = result.RowsAffected() > 0
		return nil
	})
	if err != nil || !inserted {
		return false, err
	}

	ticket.ID = id
	return true, nil
}

// Get retrieves a ticket by ID
func (r *TicketRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", id, err)
	}

	return ticket, nil
}

// Update applies the patch when a value differs
func (r *TicketRepository) Update(ctx context.Context, id string, update models.TicketUpdate) (bool, error) {
	p := newPatchBuilder(id)
	if status, ok := update.Status.Get(); ok {
		p.set("status", string(status))
	}
	if closedAt, ok := update.ClosedAt.Get(); ok {
		p.set("closed_at", closedAt)
	}
	if p.empty() {
		return false, nil
	}

	query := `UPDATE tickets SET ` + p.assignments() + ` WHERE id = $1 AND (` + p.differences() + `)`

	result, err := r.q.Exec(ctx, query, p.args...)
	if err != nil {
		return false, fmt.Errorf("failed to update ticket %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListOpen returns a member's open tickets, oldest first
func (r *TicketRepository) ListOpen(ctx context.Context, guildID, userID int64) ([]*models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE guild_id = $1 AND user_id = $2 AND status = $3
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, guildID, userID, string(models.TicketStatusOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	defer rows.Close()

	tickets := []*models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}
