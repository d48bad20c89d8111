package repository

import (
	"context"
	"fmt"
	"time"

	"logiq/database"
	"logiq/models"

	"github.com/google/uuid"
)

const reminderColumns = `id, guild_id, user_id, channel_id, message, remind_at, completed, created_at`

// ReminderRepository implements service.ReminderRepository on PostgreSQL
type ReminderRepository struct {
	q queryable
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{q: db.Pool}
}

// Create stores reminder under a new ID
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	id := uuid.NewString()
	query := `INSERT INTO reminders (` + reminderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.q.Exec(ctx, query,
		id,
		reminder.GuildID,
		reminder.UserID,
		reminder.ChannelID,
		reminder.Message,
		reminder.RemindAt,
		reminder.Completed,
		reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	reminder.ID = id
	return nil
}

// ListDue returns incomplete reminders due at or before t
func (r *ReminderRepository) ListDue(ctx context.Context, t time.Time, limit int) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE remind_at <= $1 AND NOT completed
		ORDER BY remind_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, t, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	reminders := []*models.Reminder{}
	for rows.Next() {
		var reminder models.Reminder
		err := rows.Scan(
			&reminder.ID,
			&reminder.GuildID,
			&reminder.UserID,
			&reminder.ChannelID,
			&reminder.Message,
			&reminder.RemindAt,
			&reminder.Completed,
			&reminder.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, &reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}

// Complete marks a pending reminder done
func (r *ReminderRepository) Complete(ctx context.Context, id string) (bool, error) {
	result, err := r.q.Exec(ctx, `UPDATE reminders SET completed = TRUE WHERE id = $1 AND NOT completed`, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete reminder %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
