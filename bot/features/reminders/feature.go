package reminders

import (
	"context"
	"time"

	"logiq/bot/common"
	"logiq/models"

	"github.com/bwmarrin/discordgo"
)

const (
	minMinutes       = 1
	maxMinutes       = 30 * 24 * 60
	maxMessageLength = 500
)

// ReminderStore is the slice of the persistence gateway reminders use
type ReminderStore interface {
	CreateReminder(ctx context.Context, guildID, userID, channelID int64, message string, remindAt time.Time) (*models.Reminder, error)
	DueReminders(ctx context.Context, t time.Time) ([]*models.Reminder, error)
	CompleteReminder(ctx context.Context, id string) (bool, error)
}

type Feature struct {
	reminders ReminderStore
	now       func() time.Time
}

func New(reminders ReminderStore) *Feature {
	return &Feature{reminders: reminders, now: time.Now}
}

func (f *Feature) Name() string {
	return common.ModuleReminders
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "remind",
			Description: "Set a reminder",
			Options: []*discordgo.ApplicationCommandOption{
				common.IntOption("minutes", "Minutes from now", true),
				common.StringOption("message", "What to remind you of", true),
			},
			Run: f.handleRemind,
		},
	}
}
