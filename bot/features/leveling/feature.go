package leveling

import (
	"context"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
)

// leaderboardSize is how many members the leaderboard shows
const leaderboardSize = 10

// UserStore reads member records for rank and leaderboard
type UserStore interface {
	GetUser(ctx context.Context, key models.UserKey) (*models.User, error)
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error)
}

// Subscriber registers event handlers
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler)
}

type Feature struct {
	leveling service.Leveling
	users    UserStore
	notifier common.Notifier
	names    common.NameResolver
}

// New builds the leveling module. A nil names resolver sends the leaderboard as text only.
func New(leveling service.Leveling, users UserStore, notifier common.Notifier, names common.NameResolver) *Feature {
	return &Feature{
		leveling: leveling,
		users:    users,
		notifier: notifier,
		names:    names,
	}
}

func (f *Feature) Name() string {
	return common.ModuleLeveling
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "rank",
			Description: "View a member's level and XP",
			Options:     []*discordgo.ApplicationCommandOption{common.UserOption("user", "Member to check", false)},
			Run:         f.handleRank,
		},
		{
			Name:        "leaderboard",
			Description: "View the server's XP leaderboard",
			Run:         f.handleLeaderboard,
		},
	}
}

// Reload forgets every XP cooldown
func (f *Feature) Reload() error {
	f.leveling.Reset()
	return nil
}

// Subscribe announces level-ups in the channel the message was sent in
func (f *Feature) Subscribe(bus Subscriber) {
	bus.Subscribe(events.EventTypeLevelUp, f.announceLevelUp)
}
