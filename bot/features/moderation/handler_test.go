package moderation

import (
	"context"
	"strings"
	"testing"
	"time"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModeration struct {
	mock.Mock
}

func (m *mockModeration) Warn(ctx context.Context, key models.UserKey, moderatorID int64, reason string) (*models.Warning, error) {
	args := m.Called(ctx, key, moderatorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warning), args.Error(1)
}

func (m *mockModeration) Warnings(ctx context.Context, key models.UserKey) ([]models.Warning, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Warning), args.Error(1)
}

type mockGuilds struct {
	mock.Mock
}

func (m *mockGuilds) GetGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	return m.Called(ctx, channelID, embed).Error(0)
}

const (
	guildID     int64 = 1
	moderatorID int64 = 2
	memberID    int64 = 3
)

func invocation(command string) *common.Invocation {
	inv := common.NewInvocation(common.SurfaceSlash, command, guildID, 50, moderatorID)
	inv.IsAdmin = true
	return inv
}

func TestHandleWarn(t *testing.T) {
	key := models.UserKey{UserID: memberID, GuildID: guildID}

	t.Run("stores warning", func(t *testing.T) {
		moderation := new(mockModeration)
		moderation.On("Warn", mock.Anything, key, moderatorID, "spam").
			Return(&models.Warning{ID: "w1", ModeratorID: moderatorID, Reason: "spam"}, nil)

		resp, err := New(moderation, new(mockGuilds), new(mockNotifier)).
			handleWarn(context.Background(), invocation("warn").WithArg("user", memberID).WithArg("reason", "spam"))
		require.NoError(t, err)
		assert.Equal(t, "spam", resp.Embed.Fields[1].Value)
		moderation.AssertExpectations(t)
	})

	t.Run("cannot warn yourself", func(t *testing.T) {
		moderation := new(mockModeration)

		_, err := New(moderation, new(mockGuilds), new(mockNotifier)).
			handleWarn(context.Background(), invocation("warn").WithArg("user", moderatorID).WithArg("reason", "x"))
		assert.True(t, common.IsUserError(err))
		moderation.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleWarnings(t *testing.T) {
	key := models.UserKey{UserID: memberID, GuildID: guildID}
	moderation := new(mockModeration)
	moderation.On("Warnings", mock.Anything, key).Return([]models.Warning{
		{ID: "w1", ModeratorID: moderatorID, Reason: "first", CreatedAt: time.Unix(100, 0)},
		{ID: "w2", ModeratorID: moderatorID, Reason: "second", CreatedAt: time.Unix(200, 0)},
	}, nil).Once()
	moderation.On("Warnings", mock.Anything, key).Return([]models.Warning{}, nil).Once()

	feature := New(moderation, new(mockGuilds), new(mockNotifier))

	resp, err := feature.handleWarnings(context.Background(), invocation("warnings").WithArg("user", memberID))
	require.NoError(t, err)
	assert.Equal(t, "⚠️ Warnings (2)", resp.Embed.Title)
	assert.Less(t, strings.Index(resp.Embed.Description, "second"), strings.Index(resp.Embed.Description, "first"))

	resp, err = feature.handleWarnings(context.Background(), invocation("warnings").WithArg("user", memberID))
	require.NoError(t, err)
	assert.Equal(t, "<@3> has no warnings", resp.Embed.Description)
}

func TestLogWarning(t *testing.T) {
	event := events.WarningIssuedEvent{GuildID: guildID, UserID: memberID, ModeratorID: moderatorID, Reason: "spam", Total: 2}

	t.Run("posts to log channel", func(t *testing.T) {
		logChannel := int64(99)
		guilds := new(mockGuilds)
		guilds.On("GetGuild", mock.Anything, guildID).Return(&models.Guild{GuildID: guildID, LogChannel: &logChannel}, nil)
		notifier := new(mockNotifier)
		notifier.On("Notify", mock.Anything, logChannel, mock.Anything).Return(nil)

		bus := events.NewBus()
		New(new(mockModeration), guilds, notifier).Subscribe(bus)
		bus.Emit(context.Background(), event)
		bus.Wait()

		notifier.AssertExpectations(t)
	})

	t.Run("no log channel", func(t *testing.T) {
		guilds := new(mockGuilds)
		guilds.On("GetGuild", mock.Anything, guildID).Return(&models.Guild{GuildID: guildID}, nil)
		notifier := new(mockNotifier)

		New(new(mockModeration), guilds, notifier).logWarning(context.Background(), event)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persistence unavailable", func(t *testing.T) {
		guilds := new(mockGuilds)
		guilds.On("GetGuild", mock.Anything, guildID).Return(nil, service.ErrPersistenceUnavailable)
		notifier := new(mockNotifier)

		New(new(mockModeration), guilds, notifier).logWarning(context.Background(), event)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})
}
