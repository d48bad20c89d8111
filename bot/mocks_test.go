package bot

import (
	"context"
	"sync"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

type mockGuildSource struct {
	mock.Mock
}

func (m *mockGuildSource) GetGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	return m.Called(ctx, channelID, embed).Error(0)
}

// testModule is a module backed by a fixed command table
type testModule struct {
	name     string
	commands []*common.Command
	reloads  int
	failNext error
}

func (m *testModule) Name() string { return m.name }
func (m *testModule) Commands() []*common.Command { return m.commands }

func (m *testModule) Reload() error {
	m.reloads++
	return m.failNext
}

func staticCommand(name string, resp *common.Response, err error) *common.Command {
	return &common.Command{
		Name:        name,
		Description: name,
		Run: func(context.Context, *common.Invocation) (*common.Response, error) {
			return resp, err
		},
	}
}
