package tickets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"logiq/bot/common"
	"logiq/models"
	"logiq/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTickets struct {
	mock.Mock
}

func (m *mockTickets) CreateTicket(ctx context.Context, guildID, userID, channelID int64, subject string) (*models.Ticket, error) {
	args := m.Called(ctx, guildID, userID, channelID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *mockTickets) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *mockTickets) CloseTicket(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// cappedTickets claims open slots under a mutex, the way the stores claim them atomically
type cappedTickets struct {
	mockTickets
	mu   sync.Mutex
	open map[int64]int
}

func (c *cappedTickets) CreateTicket(ctx context.Context, guildID, userID, channelID int64, subject string) (*models.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open[userID] >= service.MaxOpenTickets {
		return nil, service.ErrTicketLimit
	}
	c.open[userID]++
	return &models.Ticket{ID: fmt.Sprintf("t%d", c.open[userID]), GuildID: guildID, UserID: userID, Subject: subject}, nil
}

const (
	guildID   int64 = 1
	channelID int64 = 2
	ownerID   int64 = 3
)

func subcommand(name string, userID int64) *common.Invocation {
	inv := common.NewInvocation(common.SurfaceSlash, "ticket", guildID, channelID, userID)
	inv.Subcommand = name
	return inv
}

func TestOpenTicket(t *testing.T) {
	t.Run("creates ticket", func(t *testing.T) {
		store := new(mockTickets)
		store.On("CreateTicket", mock.Anything, guildID, ownerID, channelID, "Need help").
			Return(&models.Ticket{ID: "t1", GuildID: guildID, UserID: ownerID, Subject: "Need help", Status: models.TicketStatusOpen}, nil)

		resp, err := New(store).handleTicket(context.Background(), subcommand("open", ownerID).WithArg("subject", " Need help "))
		require.NoError(t, err)
		assert.Equal(t, "🎫 Ticket Opened", resp.Embed.Title)
		assert.Equal(t, "`t1`", resp.Embed.Fields[1].Value)
	})

	t.Run("limit reached", func(t *testing.T) {
		store := new(mockTickets)
		store.On("CreateTicket", mock.Anything, guildID, ownerID, channelID, "again").Return(nil, service.ErrTicketLimit)

		_, err := New(store).handleTicket(context.Background(), subcommand("open", ownerID).WithArg("subject", "again"))
		require.Error(t, err)
		assert.True(t, common.IsUserError(err))
		assert.Equal(t, "❌ Too Many Tickets", common.ErrorResponse(err).Embed.Title)
	})

	t.Run("subject length counts characters", func(t *testing.T) {
		subject := strings.Repeat("é", maxSubjectLength)
		store := new(mockTickets)
		store.On("CreateTicket", mock.Anything, guildID, ownerID, channelID, subject).
			Return(&models.Ticket{ID: "t1", GuildID: guildID, UserID: ownerID, Subject: subject}, nil)

		_, err := New(store).handleTicket(context.Background(), subcommand("open", ownerID).WithArg("subject", subject))
		require.NoError(t, err)

		_, err = New(new(mockTickets)).handleTicket(context.Background(), subcommand("open", ownerID).WithArg("subject", subject+"é"))
		assert.True(t, common.IsUserError(err))
	})

	t.Run("blank subject", func(t *testing.T) {
		_, err := New(new(mockTickets)).handleTicket(context.Background(), subcommand("open", ownerID).WithArg("subject", "  "))
		assert.True(t, common.IsUserError(err))
	})
}

func TestOpenTicket_ConcurrentOpensRespectLimit(t *testing.T) {
	store := &cappedTickets{open: map[int64]int{}}
	feature := New(store)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := feature.handleTicket(context.Background(), subcommand("open", ownerID).WithArg("subject", "help"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	opened, refused := 0, 0
	for err := range errs {
		if err == nil {
			opened++
			continue
		}
		assert.ErrorIs(t, err, service.ErrTicketLimit)
		refused++
	}
	assert.Equal(t, service.MaxOpenTickets, opened)
	assert.Equal(t, attempts-service.MaxOpenTickets, refused)
	assert.Equal(t, service.MaxOpenTickets, store.open[ownerID])
}

func TestCloseTicket(t *testing.T) {
	open := func() *models.Ticket {
		return &models.Ticket{ID: "t1", GuildID: guildID, UserID: ownerID, Status: models.TicketStatusOpen}
	}

	t.Run("owner closes", func(t *testing.T) {
		store := new(mockTickets)
		store.On("GetTicket", mock.Anything, "t1").Return(open(), nil)
		store.On("CloseTicket", mock.Anything, "t1").Return(true, nil)

		resp, err := New(store).handleTicket(context.Background(), subcommand("close", ownerID).WithArg("id", "t1"))
		require.NoError(t, err)
		assert.Equal(t, "Ticket `t1` has been closed", resp.Embed.Description)
	})

	t.Run("stranger denied", func(t *testing.T) {
		store := new(mockTickets)
		store.On("GetTicket", mock.Anything, "t1").Return(open(), nil)

		_, err := New(store).handleTicket(context.Background(), subcommand("close", 99).WithArg("id", "t1"))
		assert.True(t, common.IsUserError(err))
		store.AssertNotCalled(t, "CloseTicket", mock.Anything, mock.Anything)
	})

	t.Run("admin closes any ticket", func(t *testing.T) {
		store := new(mockTickets)
		store.On("GetTicket", mock.Anything, "t1").Return(open(), nil)
		store.On("CloseTicket", mock.Anything, "t1").Return(true, nil)

		inv := subcommand("close", 99).WithArg("id", "t1")
		inv.IsAdmin = true
		_, err := New(store).handleTicket(context.Background(), inv)
		require.NoError(t, err)
	})

	t.Run("other guild is not found", func(t *testing.T) {
		store := new(mockTickets)
		foreign := open()
		foreign.GuildID = 77
		store.On("GetTicket", mock.Anything, "t1").Return(foreign, nil)

		_, err := New(store).handleTicket(context.Background(), subcommand("close", ownerID).WithArg("id", "t1"))
		require.Error(t, err)
		assert.Equal(t, "Ticket `t1` not found", common.ErrorResponse(err).Embed.Description)
	})

	t.Run("already closed", func(t *testing.T) {
		store := new(mockTickets)
		closed := open()
		closed.Status = models.TicketStatusClosed
		store.On("GetTicket", mock.Anything, "t1").Return(closed, nil)

		_, err := New(store).handleTicket(context.Background(), subcommand("close", ownerID).WithArg("id", "t1"))
		assert.True(t, common.IsUserError(err))
	})
}

func TestUnknownSubcommand(t *testing.T) {
	_, err := New(new(mockTickets)).handleTicket(context.Background(), subcommand("", ownerID))
	assert.True(t, common.IsUserError(err))
}
