package service

import (
	"context"
	"errors"
	"time"

	"logiq/events"
	"logiq/models"

	log "github.com/sirupsen/logrus"
)

// AnalyticsRecorder persists domain events as analytics records
type AnalyticsRecorder struct {
	gateway *Gateway
}

// NewAnalyticsRecorder creates a recorder writing through gateway
func NewAnalyticsRecorder(gateway *Gateway) *AnalyticsRecorder {
	return &AnalyticsRecorder{gateway: gateway}
}

// Register subscribes the recorder to every event type it records
func (r *AnalyticsRecorder) Register(bus *events.Bus) {
	for _, eventType := range []events.EventType{
		events.EventTypeCommandUsed,
		events.EventTypeWarningIssued,
		events.EventTypeLevelUp,
		events.EventTypeBalanceChanged,
		events.EventTypeMemberJoined,
	} {
		bus.Subscribe(eventType, r.Handle)
	}
}

// Handle records one event. Recording is best effort: failures are logged and dropped.
func (r *AnalyticsRecorder) Handle(ctx context.Context, event events.Event) {
	record := toAnalyticsEvent(event)
	if record == nil {
		return
	}

	err := r.gateway.LogEvent(ctx, record)
	if errors.Is(err, ErrPersistenceUnavailable) {
		return
	}
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"guild_id":  record.GuildID,
		}).WithError(err).Warn("Failed to record analytics event")
	}
}

func toAnalyticsEvent(event events.Event) *models.AnalyticsEvent {
	switch e := event.(type) {
	case events.CommandUsedEvent:
		return &models.AnalyticsEvent{
			GuildID: e.GuildID,
			UserID:  userRef(e.UserID),
			Type:    models.EventCommandUsed,
			Data:    map[string]any{"command": e.Command, "surface": e.Surface, "failed": e.Failed},
		}
	case events.WarningIssuedEvent:
		return &models.AnalyticsEvent{
			GuildID: e.GuildID,
			UserID:  userRef(e.UserID),
			Type:    models.EventWarningIssued,
			Data:    map[string]any{"moderator_id": e.ModeratorID, "reason": e.Reason, "total": e.Total},
		}
	case events.LevelUpEvent:
		return &models.AnalyticsEvent{
			GuildID: e.GuildID,
			UserID:  userRef(e.UserID),
			Type:    models.EventLevelUp,
			Data:    map[string]any{"old_level": e.OldLevel, "new_level": e.NewLevel, "xp": e.XP},
		}
	case events.BalanceChangedEvent:
		return &models.AnalyticsEvent{
			GuildID: e.GuildID,
			UserID:  userRef(e.UserID),
			Type:    models.EventBalanceChanged,
			Data:    map[string]any{"amount": e.Amount, "reason": e.Reason},
		}
	case events.MemberJoinedEvent:
		return &models.AnalyticsEvent{
			GuildID:   e.GuildID,
			UserID:    userRef(e.UserID),
			Type:      models.EventMemberJoined,
			Data:      map[string]any{},
			Timestamp: e.JoinedAt.UTC().Truncate(time.Microsecond),
		}
	}
	return nil
}

func userRef(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
