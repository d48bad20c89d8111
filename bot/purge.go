package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"logiq/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Discord refuses to bulk delete messages older than two weeks
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// MessageAPI is the slice of *discordgo.Session used to purge messages
type MessageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
}

// ChannelPurger deletes recent messages from a channel
type ChannelPurger struct {
	api MessageAPI
	now func() time.Time
}

func NewChannelPurger(api MessageAPI) *ChannelPurger {
	return &ChannelPurger{api: api, now: time.Now}
}

// Purge deletes up to amount recent messages and returns how many were actually deleted.
// Messages too old to bulk delete are skipped.
func (p *ChannelPurger) Purge(ctx context.Context, channelID int64, amount int) (int, error) {
	channel := common.FormatID(channelID)

	messages, err := p.api.ChannelMessages(channel, amount, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, mapPlatformError(fmt.Errorf("failed to fetch messages: %w", err))
	}

	cutoff := p.now().Add(-bulkDeleteMaxAge)
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Timestamp.After(cutoff) {
			ids = append(ids, msg.ID)
		}
	}

	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		err = p.api.ChannelMessageDelete(channel, ids[0], discordgo.WithContext(ctx))
	default:
		err = p.api.ChannelMessagesBulkDelete(channel, ids, discordgo.WithContext(ctx))
	}
	if err != nil {
		return 0, mapPlatformError(fmt.Errorf("failed to delete messages: %w", err))
	}
	return len(ids), nil
}

// mapPlatformError marks permission refusals with common.ErrMissingPermissions
func mapPlatformError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if (restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden) ||
		(restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingPermissions) {
		return fmt.Errorf("%w: %v", common.ErrMissingPermissions, err)
	}
	return err
}
