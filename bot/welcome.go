package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logiq/bot/common"
	"logiq/events"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
)

// Welcomer greets new members in the guild's welcome channel
type Welcomer struct {
	guilds   GuildSource
	notifier common.Notifier
	emitter  events.Emitter
	now      func() time.Time
}

func NewWelcomer(guilds GuildSource, notifier common.Notifier, emitter events.Emitter) *Welcomer {
	return &Welcomer{guilds: guilds, notifier: notifier, emitter: emitter, now: time.Now}
}

// Welcome records the join and posts the greeting when a welcome channel is configured
func (w *Welcomer) Welcome(ctx context.Context, guildID, userID int64) error {
	if w.emitter != nil {
		w.emitter.Emit(ctx, events.MemberJoinedEvent{GuildID: guildID, UserID: userID, JoinedAt: w.now().UTC()})
	}

	guild, err := w.guilds.GetGuild(ctx, guildID)
	if errors.Is(err, service.ErrPersistenceUnavailable) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load guild %d: %w", guildID, err)
	}
	if guild == nil || !guild.HasWelcomeChannel() {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "👋 Welcome!",
		Description: fmt.Sprintf("Welcome to the server, %s! We're glad to have you here.", common.UserMention(userID)),
		Color:       common.ColorSuccess,
	}
	return w.notifier.Notify(ctx, *guild.WelcomeChannel, embed)
}
