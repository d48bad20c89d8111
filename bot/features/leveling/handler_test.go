package leveling

import (
	"context"
	"errors"
	"testing"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLeveling struct {
	mock.Mock
}

func (m *mockLeveling) AwardMessageXP(ctx context.Context, key models.UserKey, channelID int64) (*service.LevelProgress, error) {
	args := m.Called(ctx, key, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LevelProgress), args.Error(1)
}

func (m *mockLeveling) Reset() {
	m.Called()
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUsers) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	return m.Called(ctx, channelID, embed).Error(0)
}

const (
	guildID   int64 = 1
	channelID int64 = 2
	userID    int64 = 3
)

func invocation(command string) *common.Invocation {
	return common.NewInvocation(common.SurfaceSlash, command, guildID, channelID, userID)
}

func TestHandleRank(t *testing.T) {
	t.Run("shows progress", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetUser", mock.Anything, models.UserKey{UserID: userID, GuildID: guildID}).
			Return(&models.User{UserID: userID, GuildID: guildID, XP: 150, Level: 1}, nil)

		resp, err := New(new(mockLeveling), users, new(mockNotifier), nil).handleRank(context.Background(), invocation("rank"))
		require.NoError(t, err)
		assert.Equal(t, "1", resp.Embed.Fields[1].Value)
		assert.Equal(t, "150", resp.Embed.Fields[2].Value)
		assert.Equal(t, "250 XP to go", resp.Embed.Fields[3].Value)
	})

	t.Run("member without record", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetUser", mock.Anything, models.UserKey{UserID: 9, GuildID: guildID}).Return(nil, nil)

		resp, err := New(new(mockLeveling), users, new(mockNotifier), nil).
			handleRank(context.Background(), invocation("rank").WithArg("user", int64(9)))
		require.NoError(t, err)
		assert.Equal(t, "<@9> has not earned any XP yet", resp.Embed.Description)
	})
}

func TestHandleLeaderboard(t *testing.T) {
	users := new(mockUsers)
	users.On("Leaderboard", mock.Anything, guildID, leaderboardSize).Return([]*models.User{
		{UserID: 5, XP: 1200, Level: 3},
		{UserID: 6, XP: 400, Level: 2},
		{UserID: 7, XP: 100, Level: 1},
		{UserID: 8, XP: 10, Level: 0},
	}, nil)

	resp, err := New(new(mockLeveling), users, new(mockNotifier), nil).handleLeaderboard(context.Background(), invocation("leaderboard"))
	require.NoError(t, err)
	assert.Contains(t, resp.Embed.Description, "🥇 <@5> - Level 3 (1,200 XP)")
	assert.Contains(t, resp.Embed.Description, "**4.** <@8> - Level 0 (10 XP)")
	assert.Empty(t, resp.Files)
}

type staticNames map[int64]string

func (n staticNames) DisplayName(ctx context.Context, guildID, userID int64) string {
	return n[userID]
}

func TestHandleLeaderboard_AttachesImage(t *testing.T) {
	users := new(mockUsers)
	users.On("Leaderboard", mock.Anything, guildID, leaderboardSize).Return([]*models.User{
		{UserID: 5, XP: 1200, Level: 3},
		{UserID: 6, XP: 400, Level: 2},
	}, nil)
	names := staticNames{5: "Alice", 6: "a-very-long-display-name-indeed"}

	resp, err := New(new(mockLeveling), users, new(mockNotifier), names).handleLeaderboard(context.Background(), invocation("leaderboard"))
	require.NoError(t, err)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "leaderboard.png", resp.Files[0].Name)
	assert.Equal(t, "image/png", resp.Files[0].ContentType)
	require.NotNil(t, resp.Embed.Image)
	assert.Equal(t, "attachment://leaderboard.png", resp.Embed.Image.URL)
	assert.Contains(t, resp.Embed.Description, "🥈 <@6>")
}

func TestHandleMessage(t *testing.T) {
	key := models.UserKey{UserID: userID, GuildID: guildID}
	msg := common.MessageEvent{GuildID: guildID, ChannelID: channelID, UserID: userID, Content: "hello"}

	t.Run("awards xp", func(t *testing.T) {
		leveling := new(mockLeveling)
		leveling.On("AwardMessageXP", mock.Anything, key, channelID).Return(&service.LevelProgress{Awarded: true}, nil)

		New(leveling, new(mockUsers), new(mockNotifier), nil).HandleMessage(context.Background(), msg)
		leveling.AssertExpectations(t)
	})

	t.Run("tolerates errors", func(t *testing.T) {
		leveling := new(mockLeveling)
		leveling.On("AwardMessageXP", mock.Anything, key, channelID).Return(nil, service.ErrPersistenceUnavailable).Once()
		leveling.On("AwardMessageXP", mock.Anything, key, channelID).Return(nil, errors.New("boom")).Once()

		feature := New(leveling, new(mockUsers), new(mockNotifier), nil)
		assert.NotPanics(t, func() {
			feature.HandleMessage(context.Background(), msg)
			feature.HandleMessage(context.Background(), msg)
		})
	})
}

func TestReload_ResetsCooldowns(t *testing.T) {
	leveling := new(mockLeveling)
	leveling.On("Reset").Return()

	require.NoError(t, New(leveling, new(mockUsers), new(mockNotifier), nil).Reload())
	leveling.AssertCalled(t, "Reset")
}

func TestAnnounceLevelUp(t *testing.T) {
	notifier := new(mockNotifier)
	notifier.On("Notify", mock.Anything, channelID, mock.MatchedBy(func(e *discordgo.MessageEmbed) bool {
		return e.Description == "<@3> reached level **2**"
	})).Return(nil)

	bus := events.NewBus()
	New(new(mockLeveling), new(mockUsers), notifier, nil).Subscribe(bus)

	bus.Emit(context.Background(), events.LevelUpEvent{GuildID: guildID, UserID: userID, ChannelID: channelID, OldLevel: 1, NewLevel: 2})
	bus.Wait()

	notifier.AssertExpectations(t)
}
