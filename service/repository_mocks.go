package service

import (
	"context"
	"time"

	"logiq/events"
	"logiq/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, key models.UserKey) (*models.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, key models.UserKey, update models.UserUpdate) (bool, error) {
	args := m.Called(ctx, key, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Increment(ctx context.Context, key models.UserKey, counter models.UserCounter, delta int64) (bool, error) {
	args := m.Called(ctx, key, counter, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, key models.UserKey, amount int64) (bool, error) {
	args := m.Called(ctx, key, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Transfer(ctx context.Context, from, to models.UserKey, amount int64) (bool, error) {
	args := m.Called(ctx, from, to, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AppendItem(ctx context.Context, key models.UserKey, item models.InventoryItem) (bool, error) {
	args := m.Called(ctx, key, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AppendWarning(ctx context.Context, key models.UserKey, warning models.Warning) (bool, error) {
	args := m.Called(ctx, key, warning)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockGuildRepository is a mock implementation of GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) Get(ctx context.Context, guildID int64) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) CreateIfAbsent(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	args := m.Called(ctx, guild)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) Update(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error) {
	args := m.Called(ctx, guildID, update)
	return args.Bool(0), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *models.Ticket, maxOpen int) (bool, error) {
	args := m.Called(ctx, ticket, maxOpen)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, id string, update models.TicketUpdate) (bool, error) {
	args := m.Called(ctx, id, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepository) ListOpen(ctx context.Context, guildID, userID int64) ([]*models.Ticket, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

// MockReminderRepository is a mock implementation of ReminderRepository
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockReminderRepository) ListDue(ctx context.Context, t time.Time, limit int) ([]*models.Reminder, error) {
	args := m.Called(ctx, t, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) Complete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockShopRepository is a mock implementation of ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) List(ctx context.Context, guildID int64, limit int) ([]*models.ShopItem, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShopItem), args.Error(1)
}

func (m *MockShopRepository) Create(ctx context.Context, item *models.ShopItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockShopRepository) Get(ctx context.Context, id string) (*models.ShopItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopItem), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Log(ctx context.Context, event *models.AnalyticsEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) Query(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]*models.AnalyticsEvent, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalyticsEvent), args.Error(1)
}

// MockStore bundles the mock repositories into a Store
type MockStore struct {
	mock.Mock
	UserRepo      *MockUserRepository
	GuildRepo     *MockGuildRepository
	TicketRepo    *MockTicketRepository
	ReminderRepo  *MockReminderRepository
	ShopRepo      *MockShopRepository
	AnalyticsRepo *MockAnalyticsRepository
}

// NewMockStore creates a store whose repositories are fresh mocks
func NewMockStore() *MockStore {
	return &MockStore{
		UserRepo:      new(MockUserRepository),
		GuildRepo:     new(MockGuildRepository),
		TicketRepo:    new(MockTicketRepository),
		ReminderRepo:  new(MockReminderRepository),
		ShopRepo:      new(MockShopRepository),
		AnalyticsRepo: new(MockAnalyticsRepository),
	}
}

func (m *MockStore) Users() UserRepository { return m.UserRepo }
func (m *MockStore) Guilds() GuildRepository { return m.GuildRepo }
func (m *MockStore) Tickets() TicketRepository { return m.TicketRepo }
func (m *MockStore) Reminders() ReminderRepository { return m.ReminderRepo }
func (m *MockStore) Shop() ShopRepository { return m.ShopRepo }
func (m *MockStore) Analytics() AnalyticsRepository { return m.AnalyticsRepo }

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// AssertRepositories asserts expectations on every repository mock
func (m *MockStore) AssertRepositories(t mock.TestingT) {
	m.UserRepo.AssertExpectations(t)
	m.GuildRepo.AssertExpectations(t)
	m.TicketRepo.AssertExpectations(t)
	m.ReminderRepo.AssertExpectations(t)
	m.ShopRepo.AssertExpectations(t)
	m.AnalyticsRepo.AssertExpectations(t)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// ConnectedGateway returns a gateway already connected to store; intended for tests
func ConnectedGateway(store Store, defaults Defaults) *Gateway {
	g := NewGateway(func(ctx context.Context) (Store, error) { return store, nil }, defaults)
	g.store = store
	return g
}
