package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"logiq/bot/common"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleRemind(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	minutes, _ := inv.Int("minutes")
	if minutes < minMinutes || minutes > maxMinutes {
		return nil, common.NewUserError("Invalid Time", fmt.Sprintf("Minutes must be between %d and %d", minMinutes, maxMinutes))
	}

	message, _ := inv.String("message")
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, common.NewUserError("Invalid Message", "Please say what you want to be reminded of")
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, common.NewUserError("Invalid Message", fmt.Sprintf("Message must be at most %d characters", maxMessageLength))
	}

	remindAt := f.now().Add(time.Duration(minutes) * time.Minute)
	reminder, err := f.reminders.CreateReminder(ctx, inv.GuildID, inv.UserID, inv.ChannelID, message, remindAt)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":     inv.UserID,
		"reminder_id": reminder.ID,
		"remind_at":   reminder.RemindAt,
	}).Debug("Reminder created")

	return common.Private(common.SuccessEmbed("Reminder Set",
		fmt.Sprintf("I'll remind you %s", common.FormatDiscordTimestamp(reminder.RemindAt, "R")))), nil
}
