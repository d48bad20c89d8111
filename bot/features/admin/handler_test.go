package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"logiq/bot/common"
	"logiq/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReloader struct {
	mock.Mock
}

func (m *mockReloader) Reload(name string) error {
	return m.Called(name).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) Purge(ctx context.Context, channelID int64, amount int) (int, error) {
	args := m.Called(ctx, channelID, amount)
	return args.Int(0), args.Error(1)
}

type mockGuildStore struct {
	mock.Mock
}

func (m *mockGuildStore) GetGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *mockGuildStore) GetOrCreateGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *mockGuildStore) UpdateGuild(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error) {
	args := m.Called(ctx, guildID, update)
	return args.Bool(0), args.Error(1)
}

type fixedState struct {
	stats common.PlatformStats
}

func (s fixedState) Stats() common.PlatformStats { return s.stats }

const (
	testGuild   int64 = 100
	testChannel int64 = 200
	testUser    int64 = 300
)

type fixture struct {
	reloader  *mockReloader
	publisher *mockPublisher
	purger    *mockPurger
	guilds    *mockGuildStore
	feature   *Feature
}

func newFixture() *fixture {
	f := &fixture{
		reloader:  new(mockReloader),
		publisher: new(mockPublisher),
		purger:    new(mockPurger),
		guilds:    new(mockGuildStore),
	}
	f.feature = NewFeature(Deps{
		Reloader:  f.reloader,
		Publisher: f.publisher,
		Purger:    f.purger,
		Guilds:    f.guilds,
		Modules: []ModuleFlag{
			{Name: "admin", Enabled: true},
			{Name: "economy", Enabled: true},
			{Name: "tickets", Enabled: false},
		},
		Snapshot: common.Snapshot{
			StartedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			GoVersion:      "go1.24.0",
			LibraryVersion: "0.29.0",
			Database:       "postgres",
		},
		State: fixedState{stats: common.PlatformStats{Guilds: 3, Members: 1500, Channels: 42, Latency: 87 * time.Millisecond}},
	})
	f.feature.now = func() time.Time { return time.Date(2024, 1, 2, 1, 2, 3, 0, time.UTC) }
	return f
}

func invocation(command string) *common.Invocation {
	inv := common.NewInvocation(common.SurfaceSlash, command, testGuild, testChannel, testUser)
	inv.IsAdmin = true
	return inv
}

func TestHandleReload(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantDesc  string
	}{
		{name: "success", wantTitle: "✅ Module Reloaded", wantDesc: "Successfully reloaded **economy**"},
		{name: "not loaded", err: common.ErrModuleNotLoaded, wantTitle: "❌ Error", wantDesc: "Module **economy** is not loaded"},
		{name: "not found", err: common.ErrModuleNotFound, wantTitle: "❌ Error", wantDesc: "Module **economy** not found"},
		{name: "reload failure", err: errors.New("boom"), wantTitle: "❌ Error", wantDesc: "Failed to reload: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.reloader.On("Reload", "economy").Return(tt.err)

			resp, err := f.feature.handleReload(context.Background(), invocation("reload").WithArg("module", "Economy"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, resp.Embed.Title)
			assert.Equal(t, tt.wantDesc, resp.Embed.Description)
			assert.True(t, resp.Ephemeral)
			f.reloader.AssertExpectations(t)
		})
	}
}

func TestHandleSync(t *testing.T) {
	t.Run("reports count", func(t *testing.T) {
		f := newFixture()
		f.publisher.On("Publish", mock.Anything).Return(17, nil)

		resp, err := f.feature.handleSync(context.Background(), invocation("sync"))
		require.NoError(t, err)
		assert.Equal(t, "Successfully synced **17** commands", resp.Embed.Description)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture()
		f.publisher.On("Publish", mock.Anything).Return(0, errors.New("rate limited"))

		resp, err := f.feature.handleSync(context.Background(), invocation("sync"))
		require.NoError(t, err)
		assert.Equal(t, "Failed to sync: rate limited", resp.Embed.Description)
	})
}

func TestHandleModules(t *testing.T) {
	f := newFixture()

	resp, err := f.feature.handleModules(context.Background(), invocation("modules"))
	require.NoError(t, err)
	assert.Contains(t, resp.Embed.Description, "**Economy**: 🟢 Enabled")
	assert.Contains(t, resp.Embed.Description, "**Tickets**: 🔴 Disabled")

	empty := NewFeature(Deps{})
	resp, err = empty.handleModules(context.Background(), invocation("modules"))
	require.NoError(t, err)
	assert.Equal(t, "No modules configured", resp.Embed.Description)
}

func TestHandleBotInfo(t *testing.T) {
	f := newFixture()

	resp, err := f.feature.handleBotInfo(context.Background(), invocation("botinfo"))
	require.NoError(t, err)
	assert.False(t, resp.Ephemeral)

	values := map[string]string{}
	for _, field := range resp.Embed.Fields {
		values[field.Name] = field.Value
	}
	assert.Equal(t, "3", values["📊 Servers"])
	assert.Equal(t, "1,500", values["👥 Users"])
	assert.Equal(t, "42", values["📺 Channels"])
	assert.Equal(t, "1 day, 1:02:03", values["⏰ Uptime"])
	assert.Equal(t, "postgres", values["💾 Database"])
	assert.Equal(t, "87ms", values["🔗 Latency"])
}

func TestHandleSetLogChannel(t *testing.T) {
	f := newFixture()
	channel := int64(555)
	f.guilds.On("GetOrCreateGuild", mock.Anything, testGuild).Return(&models.Guild{GuildID: testGuild}, nil)
	f.guilds.On("UpdateGuild", mock.Anything, testGuild, mock.MatchedBy(func(u models.GuildUpdate) bool {
		ch, ok := u.LogChannel.Get()
		return ok && ch != nil && *ch == channel
	})).Return(true, nil)

	resp, err := f.feature.handleSetLogChannel(context.Background(), invocation("setlogchannel").WithArg("channel", channel))
	require.NoError(t, err)
	assert.Equal(t, "Moderation logs will be sent to <#555>", resp.Embed.Description)
	f.guilds.AssertExpectations(t)
}

func TestHandleSetLogChannel_PersistenceFailure(t *testing.T) {
	f := newFixture()
	unavailable := errors.New("persistence unavailable")
	f.guilds.On("GetOrCreateGuild", mock.Anything, testGuild).Return(nil, unavailable)

	_, err := f.feature.handleSetLogChannel(context.Background(), invocation("setlogchannel").WithArg("channel", int64(555)))
	assert.ErrorIs(t, err, unavailable)
	f.guilds.AssertNotCalled(t, "UpdateGuild", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleConfig(t *testing.T) {
	t.Run("no configuration yet", func(t *testing.T) {
		f := newFixture()
		f.guilds.On("GetGuild", mock.Anything, testGuild).Return(nil, nil)

		resp, err := f.feature.handleConfig(context.Background(), invocation("config"))
		require.NoError(t, err)
		assert.Equal(t, "ℹ️ No Configuration", resp.Embed.Title)
		assert.Equal(t, "Server has no configuration yet", resp.Embed.Description)
	})

	t.Run("renders settings", func(t *testing.T) {
		f := newFixture()
		logChannel := int64(777)
		f.guilds.On("GetGuild", mock.Anything, testGuild).Return(&models.Guild{
			GuildID:          testGuild,
			Prefix:           "?",
			Modules:          map[string]bool{"economy": false},
			LogChannel:       &logChannel,
			VerificationType: models.VerificationButton,
		}, nil)

		resp, err := f.feature.handleConfig(context.Background(), invocation("config"))
		require.NoError(t, err)

		values := map[string]string{}
		for _, field := range resp.Embed.Fields {
			values[field.Name] = field.Value
		}
		assert.Equal(t, "<#777>", values["Log Channel"])
		assert.Equal(t, "Not set", values["Welcome Channel"])
		assert.Equal(t, "Not set", values["Verified Role"])
		assert.Equal(t, "button", values["Verification Type"])
		assert.Equal(t, "`?`", values["Prefix"])
		assert.Equal(t, "Economy", values["Disabled Modules"])
	})
}

func TestHandlePurge(t *testing.T) {
	t.Run("rejects out of range amounts", func(t *testing.T) {
		for _, amount := range []int64{0, 101, -5} {
			f := newFixture()

			_, err := f.feature.handlePurge(context.Background(), invocation("purge").WithArg("amount", amount))
			require.Error(t, err)
			assert.True(t, common.IsUserError(err))

			resp := common.ErrorResponse(err)
			assert.Equal(t, "Amount must be between 1 and 100", resp.Embed.Description)
			f.purger.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("reports deleted count", func(t *testing.T) {
		f := newFixture()
		f.purger.On("Purge", mock.Anything, testChannel, 50).Return(10, nil)

		resp, err := f.feature.handlePurge(context.Background(), invocation("purge").WithArg("amount", int64(50)))
		require.NoError(t, err)
		assert.Equal(t, "Deleted **10** messages", resp.Embed.Description)
		assert.True(t, resp.Ephemeral)
		assert.Equal(t, 5*time.Second, resp.DeleteAfter)
	})

	t.Run("missing permission", func(t *testing.T) {
		f := newFixture()
		f.purger.On("Purge", mock.Anything, testChannel, 5).Return(0, common.ErrMissingPermissions)

		resp, err := f.feature.handlePurge(context.Background(), invocation("purge").WithArg("amount", int64(5)))
		require.NoError(t, err)
		assert.Equal(t, "I don't have permission to delete messages", resp.Embed.Description)
	})
}

func TestHandleToggleModule(t *testing.T) {
	t.Run("admin cannot be disabled", func(t *testing.T) {
		f := newFixture()
		_, err := f.feature.handleToggleModule(context.Background(),
			invocation("togglemodule").WithArg("module", "admin").WithArg("enabled", false))
		assert.True(t, common.IsUserError(err))
	})

	t.Run("unknown module", func(t *testing.T) {
		f := newFixture()
		_, err := f.feature.handleToggleModule(context.Background(),
			invocation("togglemodule").WithArg("module", "music").WithArg("enabled", true))
		assert.True(t, common.IsUserError(err))
	})

	t.Run("stores the flag", func(t *testing.T) {
		f := newFixture()
		f.guilds.On("GetOrCreateGuild", mock.Anything, testGuild).Return(&models.Guild{GuildID: testGuild}, nil)
		f.guilds.On("UpdateGuild", mock.Anything, testGuild, models.GuildUpdate{ModuleFlags: map[string]bool{"economy": false}}).Return(true, nil)

		resp, err := f.feature.handleToggleModule(context.Background(),
			invocation("togglemodule").WithArg("module", "economy").WithArg("enabled", false))
		require.NoError(t, err)
		assert.Equal(t, "**Economy** is now disabled in this server", resp.Embed.Description)
		f.guilds.AssertExpectations(t)
	})
}

func TestHandleSetPrefix_RejectsInvalid(t *testing.T) {
	f := newFixture()
	_, err := f.feature.handleSetPrefix(context.Background(), invocation("setprefix").WithArg("prefix", "toolong"))
	assert.True(t, common.IsUserError(err))
	f.guilds.AssertNotCalled(t, "UpdateGuild", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommands_AdminFlags(t *testing.T) {
	f := newFixture()
	for _, cmd := range f.feature.Commands() {
		if cmd.Name == "botinfo" {
			assert.False(t, cmd.AdminOnly)
			continue
		}
		assert.True(t, cmd.AdminOnly, cmd.Name)
	}
}
