package moderation

import (
	"context"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
)

// GuildSource looks up a guild's log channel
type GuildSource interface {
	GetGuild(ctx context.Context, guildID int64) (*models.Guild, error)
}

// Subscriber registers event handlers
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler)
}

type Feature struct {
	moderation service.Moderation
	guilds     GuildSource
	notifier   common.Notifier
}

func New(moderation service.Moderation, guilds GuildSource, notifier common.Notifier) *Feature {
	return &Feature{
		moderation: moderation,
		guilds:     guilds,
		notifier:   notifier,
	}
}

func (f *Feature) Name() string {
	return common.ModuleModeration
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "warn",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				common.UserOption("user", "Member to warn", true),
				common.StringOption("reason", "Reason for the warning", true),
			},
			AdminOnly: true,
			Run:       f.handleWarn,
		},
		{
			Name:        "warnings",
			Description: "List a member's warnings",
			Options:     []*discordgo.ApplicationCommandOption{common.UserOption("user", "Member to check", true)},
			AdminOnly:   true,
			Run:         f.handleWarnings,
		},
	}
}

// Subscribe posts every issued warning to the guild's log channel
func (f *Feature) Subscribe(bus Subscriber) {
	bus.Subscribe(events.EventTypeWarningIssued, f.logWarning)
}
