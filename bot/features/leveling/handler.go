package leveling

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleRank(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	target := inv.UserOr("user")

	user, err := f.users.GetUser(ctx, inv.KeyFor(target))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return common.Reply(common.InfoEmbed("No Rank", fmt.Sprintf("%s has not earned any XP yet", common.UserMention(target)))), nil
	}

	next := models.XPForLevel(user.Level + 1)
	embed := common.NewEmbed("📈 Rank", common.ColorPrimary,
		common.Field("Member", common.UserMention(target), false),
		common.Field("Level", fmt.Sprintf("%d", user.Level), true),
		common.Field("XP", common.FormatBalance(user.XP), true),
		common.Field("Next Level", fmt.Sprintf("%s XP to go", common.FormatBalance(next-user.XP)), true),
	)
	return common.Reply(embed), nil
}

func (f *Feature) handleLeaderboard(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	users, err := f.users.Leaderboard(ctx, inv.GuildID, leaderboardSize)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return common.Reply(common.InfoEmbed("Leaderboard", "Nobody has earned XP yet")), nil
	}

	var lines strings.Builder
	for i, user := range users {
		fmt.Fprintf(&lines, "%s %s - Level %d (%s XP)\n",
			placeLabel(i+1), common.UserMention(user.UserID), user.Level, common.FormatBalance(user.XP))
	}

	embed := common.NewEmbed("🏆 Leaderboard", common.ColorPrimary)
	embed.Description = lines.String()
	resp := common.Reply(embed)

	if f.names != nil {
		names := make([]string, len(users))
		for i, user := range users {
			names[i] = f.names.DisplayName(ctx, inv.GuildID, user.UserID)
		}
		png, err := renderLeaderboard(users, names)
		if err != nil {
			log.WithError(err).WithField("guild_id", inv.GuildID).Warn("Failed to render leaderboard image")
			return resp, nil
		}
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + leaderboardFile}
		resp.Files = []*discordgo.File{{
			Name:        leaderboardFile,
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}}
	}
	return resp, nil
}

// HandleMessage awards message XP. Messages during an outage earn nothing.
func (f *Feature) HandleMessage(ctx context.Context, msg common.MessageEvent) {
	key := models.UserKey{UserID: msg.UserID, GuildID: msg.GuildID}

	if _, err := f.leveling.AwardMessageXP(ctx, key, msg.ChannelID); err != nil {
		if errors.Is(err, service.ErrPersistenceUnavailable) {
			log.WithField("guild_id", msg.GuildID).Debug("Skipping message XP while persistence is unavailable")
			return
		}
		log.WithError(err).WithFields(log.Fields{
			"guild_id": msg.GuildID,
			"user_id":  msg.UserID,
		}).Error("Failed to award message XP")
	}
}

func (f *Feature) announceLevelUp(ctx context.Context, event events.Event) {
	levelUp, ok := event.(events.LevelUpEvent)
	if !ok || levelUp.ChannelID == 0 {
		return
	}

	embed := common.NewEmbed("🎉 Level Up!", common.ColorSuccess)
	embed.Description = fmt.Sprintf("%s reached level **%d**", common.UserMention(levelUp.UserID), levelUp.NewLevel)

	if err := f.notifier.Notify(ctx, levelUp.ChannelID, embed); err != nil {
		log.WithError(err).WithField("channel_id", levelUp.ChannelID).Warn("Failed to announce level up")
	}
}

func placeLabel(place int) string {
	switch place {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("**%d.**", place)
}
