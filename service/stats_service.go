package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"logiq/models"
)

const (
	// MaxActivityDays bounds the window of one activity summary
	MaxActivityDays = 90
	// topCommandCount is how many commands a summary ranks
	topCommandCount = 5
)

// statsService implements the Stats interface
type statsService struct {
	gateway *Gateway
}

// NewStatsService creates the activity summary service
func NewStatsService(gateway *Gateway) Stats {
	return &statsService{gateway: gateway}
}

// GuildActivity summarizes the guild's analytics for the last days days, today included
func (s *statsService) GuildActivity(ctx context.Context, guildID int64, days int) (*models.ActivitySummary, error) {
	if days < 1 || days > MaxActivityDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidAmount, MaxActivityDays)
	}

	now := s.gateway.now()
	filter := models.AnalyticsFilter{
		GuildID: guildID,
		From:    ActivityWindowStart(now, days),
		To:      now.UTC(),
	}
	records, err := s.gateway.Analytics(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &models.ActivitySummary{
		GuildID:   guildID,
		From:      filter.From,
		To:        filter.To,
		Truncated: len(records) >= models.MaxAnalyticsResults,
	}
	uses := make(map[string]int)

	for _, record := range records {
		switch record.Type {
		case models.EventCommandUsed:
			summary.Commands++
			if failed, _ := record.Data["failed"].(bool); failed {
				summary.FailedCommands++
			}
			if command, ok := record.Data["command"].(string); ok && command != "" {
				uses[command]++
			}
		case models.EventWarningIssued:
			summary.Warnings++
		case models.EventLevelUp:
			summary.LevelUps++
		case models.EventMemberJoined:
			summary.MembersJoined++
		case models.EventBalanceChanged:
			// transfers appear twice; count the debit side only
			if amount := numericValue(record.Data["amount"]); amount < 0 {
				summary.CoinsMoved += -amount
			}
		}
	}

	summary.TopCommands = make([]models.CommandCount, 0, len(uses))
	for command, count := range uses {
		summary.TopCommands = append(summary.TopCommands, models.CommandCount{Command: command, Uses: count})
	}
	sort.Slice(summary.TopCommands, func(i, j int) bool {
		if summary.TopCommands[i].Uses != summary.TopCommands[j].Uses {
			return summary.TopCommands[i].Uses > summary.TopCommands[j].Uses
		}
		return summary.TopCommands[i].Command < summary.TopCommands[j].Command
	})
	if len(summary.TopCommands) > topCommandCount {
		summary.TopCommands = summary.TopCommands[:topCommandCount]
	}

	return summary, nil
}

// numericValue reads a number stored in an event payload. JSONB decodes
// numbers as float64, BSON keeps the integer width it was written with.
func numericValue(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}
