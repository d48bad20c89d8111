package service

import (
	"context"
	"errors"
	"testing"

	"logiq/events"
	"logiq/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEconomyService_Pay(t *testing.T) {
	ctx := context.Background()
	from := models.UserKey{UserID: 1, GuildID: 100}
	to := models.UserKey{UserID: 2, GuildID: 100}

	tests := []struct {
		name       string
		amount     int64
		from, to   models.UserKey
		setupMocks func(store *MockStore, publisher *MockEventPublisher)
		wantErr    error
	}{
		{
			name:    "non-positive amount",
			amount:  0,
			from:    from,
			to:      to,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "self transfer",
			amount:  10,
			from:    from,
			to:      from,
			wantErr: ErrSelfTransfer,
		},
		{
			name:   "insufficient balance",
			amount: 5000,
			from:   from,
			to:     to,
			setupMocks: func(store *MockStore, publisher *MockEventPublisher) {
				store.UserRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(&models.User{Balance: 1000}, nil).Twice()
				store.UserRepo.On("Transfer", ctx, from, to, int64(5000)).Return(false, nil)
			},
			wantErr: ErrInsufficientBalance,
		},
		{
			name:   "successful transfer publishes both sides",
			amount: 250,
			from:   from,
			to:     to,
			setupMocks: func(store *MockStore, publisher *MockEventPublisher) {
				store.UserRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(&models.User{Balance: 1000}, nil).Twice()
				store.UserRepo.On("Transfer", ctx, from, to, int64(250)).Return(true, nil)
				publisher.On("Emit", ctx, events.BalanceChangedEvent{UserID: 1, GuildID: 100, Amount: -250, Reason: "transfer_out"}).Once()
				publisher.On("Emit", ctx, events.BalanceChangedEvent{UserID: 2, GuildID: 100, Amount: 250, Reason: "transfer_in"}).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockStore()
			publisher := new(MockEventPublisher)
			if tt.setupMocks != nil {
				tt.setupMocks(store, publisher)
			}
			svc := NewEconomyService(ConnectedGateway(store, testDefaults), publisher)

			err := svc.Pay(ctx, tt.from, tt.to, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				publisher.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}
			store.AssertRepositories(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestEconomyService_Buy(t *testing.T) {
	ctx := context.Background()
	key := models.UserKey{UserID: 1, GuildID: 100}
	item := &models.ShopItem{ID: "item-1", GuildID: 100, Name: "Sword", Price: 300}

	t.Run("debits and adds to inventory", func(t *testing.T) {
		store := NewMockStore()
		publisher := new(MockEventPublisher)
		svc := NewEconomyService(ConnectedGateway(store, testDefaults), publisher)

		store.ShopRepo.On("Get", ctx, "item-1").Return(item, nil)
		store.UserRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(&models.User{Balance: 1000}, nil)
		store.UserRepo.On("DeductBalance", ctx, key, int64(300)).Return(true, nil)
		store.UserRepo.On("AppendItem", ctx, key, mock.MatchedBy(func(i models.InventoryItem) bool {
			return i.ItemID == "item-1" && i.Name == "Sword" && i.Price == 300
		})).Return(true, nil)
		publisher.On("Emit", ctx, events.BalanceChangedEvent{UserID: 1, GuildID: 100, Amount: -300, Reason: "purchase"}).Once()

		bought, err := svc.Buy(ctx, key, "item-1")
		require.NoError(t, err)
		assert.Equal(t, "Sword", bought.Name)
		store.AssertRepositories(t)
		publisher.AssertExpectations(t)
	})

	t.Run("item from another guild is not found", func(t *testing.T) {
		store := NewMockStore()
		publisher := new(MockEventPublisher)
		svc := NewEconomyService(ConnectedGateway(store, testDefaults), publisher)
		store.ShopRepo.On("Get", ctx, "item-1").Return(&models.ShopItem{ID: "item-1", GuildID: 999, Price: 1}, nil)

		_, err := svc.Buy(ctx, key, "item-1")
		assert.ErrorIs(t, err, ErrNotFound)
		store.UserRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient balance leaves inventory untouched", func(t *testing.T) {
		store := NewMockStore()
		publisher := new(MockEventPublisher)
		svc := NewEconomyService(ConnectedGateway(store, testDefaults), publisher)
		store.ShopRepo.On("Get", ctx, "item-1").Return(item, nil)
		store.UserRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(&models.User{Balance: 10}, nil)
		store.UserRepo.On("DeductBalance", ctx, key, int64(300)).Return(false, nil)

		_, err := svc.Buy(ctx, key, "item-1")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		store.UserRepo.AssertNotCalled(t, "AppendItem", mock.Anything, mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	})

	t.Run("inventory failure refunds the debit", func(t *testing.T) {
		store := NewMockStore()
		publisher := new(MockEventPublisher)
		svc := NewEconomyService(ConnectedGateway(store, testDefaults), publisher)
		store.ShopRepo.On("Get", ctx, "item-1").Return(item, nil)
		store.UserRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(&models.User{Balance: 1000}, nil)
		store.UserRepo.On("DeductBalance", ctx, key, int64(300)).Return(true, nil)
		store.UserRepo.On("AppendItem", ctx, key, mock.Anything).Return(false, errors.New("connection reset"))
		store.UserRepo.On("Increment", ctx, key, models.CounterBalance, int64(300)).Return(true, nil)

		_, err := svc.Buy(ctx, key, "item-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		store.AssertRepositories(t)
		publisher.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	})
}

func TestEconomyService_Balance_CreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	svc := NewEconomyService(ConnectedGateway(store, testDefaults), new(MockEventPublisher))
	key := models.UserKey{UserID: 5, GuildID: 6}

	store.UserRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Key() == key && u.Balance == 1000
	})).Return(&models.User{UserID: 5, GuildID: 6, Balance: 1000}, nil)

	user, err := svc.Balance(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), user.Balance)
}

func TestEconomyService_PersistenceUnavailable(t *testing.T) {
	g := NewGateway(func(ctx context.Context) (Store, error) { return nil, errors.New("down") }, testDefaults)
	svc := NewEconomyService(g, new(MockEventPublisher))

	_, err := svc.Balance(context.Background(), models.UserKey{UserID: 1, GuildID: 2})
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)

	err = svc.Pay(context.Background(), models.UserKey{UserID: 1, GuildID: 2}, models.UserKey{UserID: 3, GuildID: 2}, 5)
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
}
