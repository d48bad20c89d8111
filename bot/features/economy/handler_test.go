package economy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"logiq/bot/common"
	"logiq/models"
	"logiq/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEconomy struct {
	mock.Mock
}

func (m *mockEconomy) Balance(ctx context.Context, key models.UserKey) (*models.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockEconomy) Pay(ctx context.Context, from, to models.UserKey, amount int64) error {
	return m.Called(ctx, from, to, amount).Error(0)
}

func (m *mockEconomy) Buy(ctx context.Context, key models.UserKey, itemID string) (*models.ShopItem, error) {
	args := m.Called(ctx, key, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopItem), args.Error(1)
}

func (m *mockEconomy) AddShopItem(ctx context.Context, guildID int64, name, description string, price int64) (*models.ShopItem, error) {
	args := m.Called(ctx, guildID, name, description, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopItem), args.Error(1)
}

func (m *mockEconomy) Shop(ctx context.Context, guildID int64) ([]*models.ShopItem, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShopItem), args.Error(1)
}

const (
	guildID int64 = 10
	userID  int64 = 20
	otherID int64 = 30
)

func invocation(command string) *common.Invocation {
	return common.NewInvocation(common.SurfacePrefix, command, guildID, 1, userID)
}

func TestHandleBalance(t *testing.T) {
	t.Run("own balance", func(t *testing.T) {
		economy := new(mockEconomy)
		economy.On("Balance", mock.Anything, models.UserKey{UserID: userID, GuildID: guildID}).
			Return(&models.User{UserID: userID, GuildID: guildID, Balance: 12500}, nil)

		resp, err := New(economy).handleBalance(context.Background(), invocation("balance"))
		require.NoError(t, err)
		assert.Equal(t, "**12,500** coins", resp.Embed.Fields[1].Value)
	})

	t.Run("other member", func(t *testing.T) {
		economy := new(mockEconomy)
		economy.On("Balance", mock.Anything, models.UserKey{UserID: otherID, GuildID: guildID}).
			Return(&models.User{UserID: otherID, GuildID: guildID, Balance: 5}, nil)

		resp, err := New(economy).handleBalance(context.Background(), invocation("balance").WithArg("user", otherID))
		require.NoError(t, err)
		assert.Equal(t, "<@30>", resp.Embed.Fields[0].Value)
	})

	t.Run("persistence unavailable", func(t *testing.T) {
		economy := new(mockEconomy)
		economy.On("Balance", mock.Anything, mock.Anything).Return(nil, service.ErrPersistenceUnavailable)

		_, err := New(economy).handleBalance(context.Background(), invocation("balance"))
		assert.ErrorIs(t, err, service.ErrPersistenceUnavailable)
		assert.Equal(t, "❌ Database Unavailable", common.ErrorResponse(err).Embed.Title)
	})
}

func TestHandlePay(t *testing.T) {
	from := models.UserKey{UserID: userID, GuildID: guildID}
	to := models.UserKey{UserID: otherID, GuildID: guildID}

	t.Run("success", func(t *testing.T) {
		economy := new(mockEconomy)
		economy.On("Pay", mock.Anything, from, to, int64(250)).Return(nil)

		resp, err := New(economy).handlePay(context.Background(),
			invocation("pay").WithArg("user", otherID).WithArg("amount", int64(250)))
		require.NoError(t, err)
		assert.Equal(t, "Sent **250** coins to <@30>", resp.Embed.Description)
	})

	t.Run("insufficient balance is a user error", func(t *testing.T) {
		economy := new(mockEconomy)
		economy.On("Pay", mock.Anything, from, to, int64(5000)).Return(service.ErrInsufficientBalance)

		_, err := New(economy).handlePay(context.Background(),
			invocation("pay").WithArg("user", otherID).WithArg("amount", int64(5000)))
		assert.True(t, common.IsUserError(err))
	})

	t.Run("missing recipient", func(t *testing.T) {
		economy := new(mockEconomy)

		_, err := New(economy).handlePay(context.Background(), invocation("pay").WithArg("amount", int64(5)))
		assert.True(t, common.IsUserError(err))
		economy.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleShop(t *testing.T) {
	economy := new(mockEconomy)
	economy.On("Shop", mock.Anything, guildID).Return([]*models.ShopItem{
		{ID: "a1", GuildID: guildID, Name: "Badge", Description: "Shiny", Price: 1500},
	}, nil).Once()
	economy.On("Shop", mock.Anything, guildID).Return([]*models.ShopItem{}, nil).Once()

	feature := New(economy)

	resp, err := feature.handleShop(context.Background(), invocation("shop"))
	require.NoError(t, err)
	require.Len(t, resp.Embed.Fields, 1)
	assert.Equal(t, "Badge", resp.Embed.Fields[0].Name)
	assert.Equal(t, "Shiny\n1,500 coins\nID: `a1`", resp.Embed.Fields[0].Value)

	resp, err = feature.handleShop(context.Background(), invocation("shop"))
	require.NoError(t, err)
	assert.Equal(t, "The shop is empty", resp.Embed.Description)
}

func TestHandleBuy(t *testing.T) {
	economy := new(mockEconomy)
	economy.On("Buy", mock.Anything, models.UserKey{UserID: userID, GuildID: guildID}, "a1").
		Return(&models.ShopItem{ID: "a1", Name: "Badge", Price: 100}, nil)
	economy.On("Buy", mock.Anything, mock.Anything, "missing").Return(nil, service.ErrNotFound)

	feature := New(economy)

	resp, err := feature.handleBuy(context.Background(), invocation("buy").WithArg("item_id", "a1"))
	require.NoError(t, err)
	assert.Equal(t, "You bought **Badge** for **100** coins", resp.Embed.Description)

	_, err = feature.handleBuy(context.Background(), invocation("buy").WithArg("item_id", "missing"))
	assert.True(t, common.IsUserError(err))

	_, err = feature.handleBuy(context.Background(), invocation("buy").WithArg("item_id", "  "))
	assert.True(t, common.IsUserError(err))
}

func TestHandleInventory(t *testing.T) {
	items := make([]models.InventoryItem, 0, inventoryPreview+3)
	for i := 0; i < inventoryPreview+3; i++ {
		items = append(items, models.InventoryItem{ItemID: fmt.Sprint(i), Name: fmt.Sprintf("Item %d", i), AcquiredAt: time.Unix(0, 0)})
	}

	economy := new(mockEconomy)
	economy.On("Balance", mock.Anything, mock.Anything).Return(&models.User{Inventory: items}, nil).Once()
	economy.On("Balance", mock.Anything, mock.Anything).Return(&models.User{Inventory: []models.InventoryItem{}}, nil).Once()

	feature := New(economy)

	resp, err := feature.handleInventory(context.Background(), invocation("inventory"))
	require.NoError(t, err)
	assert.Contains(t, resp.Embed.Description, "**Item 0**")
	assert.Contains(t, resp.Embed.Description, "...and 3 more")
	assert.NotContains(t, resp.Embed.Description, "**Item 20**")

	resp, err = feature.handleInventory(context.Background(), invocation("inventory"))
	require.NoError(t, err)
	assert.Equal(t, "Your inventory is empty", resp.Embed.Description)
}

func TestHandleAddItem(t *testing.T) {
	economy := new(mockEconomy)
	economy.On("AddShopItem", mock.Anything, guildID, "Badge", "Shiny", int64(100)).
		Return(&models.ShopItem{ID: "a1", Name: "Badge", Price: 100}, nil)

	feature := New(economy)

	resp, err := feature.handleAddItem(context.Background(),
		invocation("additem").WithArg("name", " Badge ").WithArg("price", int64(100)).WithArg("description", "Shiny"))
	require.NoError(t, err)
	assert.Contains(t, resp.Embed.Description, "ID: `a1`")

	_, err = feature.handleAddItem(context.Background(), invocation("additem").WithArg("name", "Cheap").WithArg("price", int64(-1)))
	assert.True(t, common.IsUserError(err))

	economy.On("AddShopItem", mock.Anything, guildID, "Broken", "", int64(1)).Return(nil, errors.New("write failed"))
	_, err = feature.handleAddItem(context.Background(), invocation("additem").WithArg("name", "Broken").WithArg("price", int64(1)))
	require.Error(t, err)
	assert.False(t, common.IsUserError(err))
}
