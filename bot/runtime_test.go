package bot

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snapshot := NewSnapshot("PostgreSQL", started)

	assert.Equal(t, discordgo.VERSION, snapshot.LibraryVersion)
	assert.NotEmpty(t, snapshot.GoVersion)
	assert.Equal(t, 90*time.Minute, snapshot.Uptime(started.Add(90*time.Minute)))
}

func TestSessionState_Stats(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{
		ID:          "1",
		MemberCount: 120,
		Channels:    []*discordgo.Channel{{ID: "10"}, {ID: "11"}},
	}))
	require.NoError(t, state.GuildAdd(&discordgo.Guild{
		ID:          "2",
		MemberCount: 30,
		Channels:    []*discordgo.Channel{{ID: "20"}},
	}))

	reader := &sessionState{state: state, latency: func() time.Duration { return 42 * time.Millisecond }}
	stats := reader.Stats()

	assert.Equal(t, 2, stats.Guilds)
	assert.Equal(t, 150, stats.Members)
	assert.Equal(t, 3, stats.Channels)
	assert.Equal(t, 42*time.Millisecond, stats.Latency)
}

func TestMemberNames_DisplayName(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "1"}))
	require.NoError(t, state.MemberAdd(&discordgo.Member{GuildID: "1", Nick: "Captain", User: &discordgo.User{ID: "5", Username: "cap"}}))
	require.NoError(t, state.MemberAdd(&discordgo.Member{GuildID: "1", User: &discordgo.User{ID: "6", Username: "plain"}}))

	names := &memberNames{state: state}
	ctx := context.Background()

	assert.Equal(t, "Captain", names.DisplayName(ctx, 1, 5))
	assert.Equal(t, "plain", names.DisplayName(ctx, 1, 6))
	assert.Equal(t, "User 7", names.DisplayName(ctx, 1, 7))
}
