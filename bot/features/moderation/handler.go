package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logiq/bot/common"
	"logiq/events"
	"logiq/service"

	log "github.com/sirupsen/logrus"
)

// warningsShown caps the warnings listed in one embed
const warningsShown = 10

func (f *Feature) handleWarn(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	target, ok := inv.ID("user")
	if !ok {
		return nil, common.NewUserError("Invalid Member", "Please mention the member to warn")
	}
	if target == inv.UserID {
		return nil, common.NewUserError("Invalid Member", "You cannot warn yourself")
	}
	reason, _ := inv.String("reason")

	warning, err := f.moderation.Warn(ctx, inv.KeyFor(target), inv.UserID, reason)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild_id":     inv.GuildID,
		"user_id":      target,
		"moderator_id": inv.UserID,
	}).Info("Member warned")

	embed := common.NewEmbed("⚠️ Member Warned", common.ColorWarning,
		common.Field("Member", common.UserMention(target), true),
		common.Field("Reason", warning.Reason, false),
	)
	return common.Reply(embed), nil
}

func (f *Feature) handleWarnings(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	target, ok := inv.ID("user")
	if !ok {
		return nil, common.NewUserError("Invalid Member", "Please mention a member")
	}

	warnings, err := f.moderation.Warnings(ctx, inv.KeyFor(target))
	if err != nil {
		return nil, err
	}
	if len(warnings) == 0 {
		return common.Private(common.InfoEmbed("Warnings", fmt.Sprintf("%s has no warnings", common.UserMention(target)))), nil
	}

	// newest first
	var lines strings.Builder
	for i := len(warnings) - 1; i >= 0 && len(warnings)-i <= warningsShown; i-- {
		w := warnings[i]
		fmt.Fprintf(&lines, "%s by %s: %s\n",
			common.FormatDiscordTimestamp(w.CreatedAt, "d"), common.UserMention(w.ModeratorID), w.Reason)
	}

	embed := common.NewEmbed(fmt.Sprintf("⚠️ Warnings (%d)", len(warnings)), common.ColorWarning)
	embed.Description = common.UserMention(target) + "\n\n" + lines.String()
	return common.Private(embed), nil
}

func (f *Feature) logWarning(ctx context.Context, event events.Event) {
	warned, ok := event.(events.WarningIssuedEvent)
	if !ok {
		return
	}

	guild, err := f.guilds.GetGuild(ctx, warned.GuildID)
	if err != nil {
		if !errors.Is(err, service.ErrPersistenceUnavailable) {
			log.WithError(err).WithField("guild_id", warned.GuildID).Error("Failed to load guild for moderation log")
		}
		return
	}
	if guild == nil || !guild.HasLogChannel() {
		return
	}

	embed := common.NewEmbed("⚠️ Warning Issued", common.ColorWarning,
		common.Field("Member", common.UserMention(warned.UserID), true),
		common.Field("Moderator", common.UserMention(warned.ModeratorID), true),
		common.Field("Total Warnings", fmt.Sprintf("%d", warned.Total), true),
		common.Field("Reason", warned.Reason, false),
	)
	if err := f.notifier.Notify(ctx, *guild.LogChannel, embed); err != nil {
		log.WithError(err).WithField("channel_id", *guild.LogChannel).Warn("Failed to post moderation log")
	}
}
