package common

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Snapshot is captured once at startup and never changes
type Snapshot struct {
	StartedAt      time.Time
	GoVersion      string
	LibraryVersion string
	Database       string
}

// Uptime is the time elapsed since startup
func (s Snapshot) Uptime(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// PlatformStats aggregates the live session state across every joined guild
type PlatformStats struct {
	Guilds   int
	Members  int
	Channels int
	Latency  time.Duration
}

// StateReader gives handlers read-only access to the live session state
type StateReader interface {
	Stats() PlatformStats
}

// NameResolver maps a member to the name shown in the guild
type NameResolver interface {
	DisplayName(ctx context.Context, guildID, userID int64) string
}

// Notifier posts embeds outside of a command reply, e.g. to a log channel
type Notifier interface {
	Notify(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error
}

// MessageEvent is a guild message seen by modules that listen to chat
type MessageEvent struct {
	GuildID   int64
	ChannelID int64
	UserID    int64
	Content   string
}
