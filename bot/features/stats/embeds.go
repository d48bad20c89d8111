package stats

import (
	"fmt"
	"strings"
	"time"

	"logiq/bot/common"
	"logiq/models"

	"github.com/bwmarrin/discordgo"
)

// BuildActivityEmbed creates the server activity embed
func BuildActivityEmbed(summary *models.ActivitySummary, days int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("📊 Server Activity (last %d days)", days),
		Color:     common.ColorPrimary,
		Timestamp: summary.To.Format(time.RFC3339),
	}
	if days == 1 {
		embed.Title = "📊 Server Activity (today)"
	}

	embed.Fields = append(embed.Fields,
		common.Field("⌨️ Commands", fmt.Sprintf("**%d** (%.1f%% failed)", summary.Commands, summary.FailureRate()), true),
		common.Field("👋 New Members", fmt.Sprintf("**%d**", summary.MembersJoined), true),
		common.Field("📈 Level Ups", fmt.Sprintf("**%d**", summary.LevelUps), true),
		common.Field("⚠️ Warnings", fmt.Sprintf("**%d**", summary.Warnings), true),
		common.Field("💸 Coins Spent or Sent", fmt.Sprintf("**%s**", common.FormatBalance(summary.CoinsMoved)), true),
	)

	if len(summary.TopCommands) > 0 {
		var lines []string
		for i, entry := range summary.TopCommands {
			lines = append(lines, fmt.Sprintf("%d. `%s` - %d uses", i+1, entry.Command, entry.Uses))
		}
		embed.Fields = append(embed.Fields, common.Field("🔥 Top Commands", strings.Join(lines, "\n"), false))
	}

	if summary.Truncated {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Only the most recent activity was counted"}
	}
	return embed
}
