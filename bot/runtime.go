package bot

import (
	"context"
	"runtime"
	"time"

	"logiq/bot/common"

	"github.com/bwmarrin/discordgo"
)

// NewSnapshot captures the process facts shown by botinfo
func NewSnapshot(database string, startedAt time.Time) common.Snapshot {
	return common.Snapshot{
		StartedAt:      startedAt,
		GoVersion:      runtime.Version(),
		LibraryVersion: discordgo.VERSION,
		Database:       database,
	}
}

// sessionState reads the live guild cache kept by discordgo
type sessionState struct {
	state   *discordgo.State
	latency func() time.Duration
}

// NewStateReader exposes session's state cache read-only
func NewStateReader(session *discordgo.Session) common.StateReader {
	return &sessionState{state: session.State, latency: session.HeartbeatLatency}
}

func (s *sessionState) Stats() common.PlatformStats {
	stats := common.PlatformStats{Latency: s.latency()}
	if s.state == nil {
		return stats
	}

	s.state.RLock()
	defer s.state.RUnlock()

	stats.Guilds = len(s.state.Guilds)
	for _, guild := range s.state.Guilds {
		stats.Members += guild.MemberCount
		stats.Channels += len(guild.Channels)
	}
	return stats
}

// memberNames resolves display names from the state cache, falling back to REST
type memberNames struct {
	state   *discordgo.State
	session *discordgo.Session
}

func NewNameResolver(session *discordgo.Session) common.NameResolver {
	return &memberNames{state: session.State, session: session}
}

func (n *memberNames) DisplayName(ctx context.Context, guildID, userID int64) string {
	guild, user := common.FormatID(guildID), common.FormatID(userID)

	if n.state != nil {
		if member, err := n.state.Member(guild, user); err == nil {
			if name := memberName(member); name != "" {
				return name
			}
		}
	}
	if n.session != nil {
		if member, err := n.session.GuildMember(guild, user, discordgo.WithContext(ctx)); err == nil {
			if name := memberName(member); name != "" {
				return name
			}
		}
	}
	return "User " + user
}

// memberName prefers the guild nickname over the global name and username
func memberName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// sessionNotifier posts embeds through the session
type sessionNotifier struct {
	session *discordgo.Session
}

func NewNotifier(session *discordgo.Session) common.Notifier {
	return &sessionNotifier{session: session}
}

func (n *sessionNotifier) Notify(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	_, err := n.session.ChannelMessageSendEmbed(common.FormatID(channelID), embed, discordgo.WithContext(ctx))
	return mapPlatformError(err)
}
