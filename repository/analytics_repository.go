package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"logiq/database"
	"logiq/models"

	"github.com/google/uuid"
)

// AnalyticsRepository implements service.AnalyticsRepository on PostgreSQL
type AnalyticsRepository struct {
	q queryable
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *database.DB) *AnalyticsRepository {
	return &AnalyticsRepository{q: db.Pool}
}

// Log stores event under a new ID
func (r *AnalyticsRepository) Log(ctx context.Context, event *models.AnalyticsEvent) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO analytics_events (id, guild_id, user_id, type, data, "timestamp")
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
	`

	_, err = r.q.Exec(ctx, query, id, event.GuildID, event.UserID, string(event.Type), dataJSON, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to log %s event: %w", event.Type, err)
	}

	event.ID = id
	return nil
}

// Query returns matching events newest first
func (r *AnalyticsRepository) Query(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]*models.AnalyticsEvent, error) {
	conditions := []string{"guild_id = $1"}
	args := []any{filter.GuildID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf(`"timestamp" >= $%d`, len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf(`"timestamp" <= $%d`, len(args)))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, guild_id, user_id, type, data, "timestamp"
		FROM analytics_events
		WHERE %s
		ORDER BY "timestamp" DESC
		LIMIT $%d
	`, strings.Join(conditions, " AND "), len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics for guild %d: %w", filter.GuildID, err)
	}
	defer rows.Close()

	result := []*models.AnalyticsEvent{}
	for rows.Next() {
		var event models.AnalyticsEvent
		var eventType string
		var dataJSON []byte

		if err := rows.Scan(&event.ID, &event.GuildID, &event.UserID, &eventType, &dataJSON, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan analytics event: %w", err)
		}
		event.Type = models.AnalyticsEventType(eventType)
		event.Data = map[string]any{}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &event.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
			}
		}
		result = append(result, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analytics events: %w", err)
	}

	return result, nil
}
