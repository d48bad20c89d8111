package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"logiq/events"
	"logiq/models"
)

// DefaultWarningReason is stored when a moderator gives none
const DefaultWarningReason = "No reason provided"

type moderationService struct {
	gateway   *Gateway
	publisher EventPublisher
}

// NewModerationService creates the warning service
func NewModerationService(gateway *Gateway, publisher EventPublisher) Moderation {
	return &moderationService{
		gateway:   gateway,
		publisher: publisher,
	}
}

// Warn appends a warning to the member's record and publishes a WarningIssuedEvent
func (s *moderationService) Warn(ctx context.Context, key models.UserKey, moderatorID int64, reason string) (*models.Warning, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultWarningReason
	}

	if _, err := s.gateway.GetOrCreateUser(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	warning := models.Warning{
		ID:          newID(),
		ModeratorID: moderatorID,
		Reason:      reason,
		CreatedAt:   s.gateway.now().UTC().Truncate(time.Microsecond),
	}
	added, err := s.gateway.AddWarning(ctx, key, warning)
	if err != nil {
		return nil, fmt.Errorf("failed to warn %s: %w", key, err)
	}
	if !added {
		return nil, ErrNotFound
	}

	warnings, err := s.gateway.GetWarnings(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings for %s: %w", key, err)
	}

	s.publisher.Emit(ctx, events.WarningIssuedEvent{
		GuildID:     key.GuildID,
		UserID:      key.UserID,
		ModeratorID: moderatorID,
		WarningID:   warning.ID,
		Reason:      reason,
		Total:       len(warnings),
		IssuedAt:    warning.CreatedAt,
	})
	return &warning, nil
}

// Warnings lists the member's warnings, oldest first. Callers that show the newest first reverse it.
func (s *moderationService) Warnings(ctx context.Context, key models.UserKey) ([]models.Warning, error) {
	return s.gateway.GetWarnings(ctx, key)
}
