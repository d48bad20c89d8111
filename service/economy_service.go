package service

import (
	"context"
	"errors"
	"fmt"

	"logiq/events"
	"logiq/models"

	log "github.com/sirupsen/logrus"
)

type economyService struct {
	gateway   *Gateway
	publisher EventPublisher
}

// NewEconomyService creates the balance and shop service
func NewEconomyService(gateway *Gateway, publisher EventPublisher) Economy {
	return &economyService{
		gateway:   gateway,
		publisher: publisher,
	}
}

// Balance returns the member's record, creating it with the starting balance on first use
func (s *economyService) Balance(ctx context.Context, key models.UserKey) (*models.User, error) {
	return s.gateway.GetOrCreateUser(ctx, key)
}

// Pay moves amount from one member to another in the same guild
func (s *economyService) Pay(ctx context.Context, from, to models.UserKey, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSelfTransfer
	}

	if _, err := s.gateway.GetOrCreateUser(ctx, from); err != nil {
		return fmt.Errorf("failed to load sender: %w", err)
	}
	if _, err := s.gateway.GetOrCreateUser(ctx, to); err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	ok, err := s.gateway.Transfer(ctx, from, to, amount)
	if err != nil {
		return fmt.Errorf("failed to transfer %d from %s to %s: %w", amount, from, to, err)
	}
	if !ok {
		return ErrInsufficientBalance
	}

	pending := events.NewTransactionalBus(s.publisher)
	pending.Publish(events.BalanceChangedEvent{UserID: from.UserID, GuildID: from.GuildID, Amount: -amount, Reason: "transfer_out"})
	pending.Publish(events.BalanceChangedEvent{UserID: to.UserID, GuildID: to.GuildID, Amount: amount, Reason: "transfer_in"})
	pending.Flush(ctx)
	return nil
}

// Buy debits the item's price and appends it to the member's inventory.
// If the inventory write fails the debit is refunded.
func (s *economyService) Buy(ctx context.Context, key models.UserKey, itemID string) (*models.ShopItem, error) {
	item, err := s.gateway.GetShopItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop item %s: %w", itemID, err)
	}
	if item == nil || item.GuildID != key.GuildID {
		return nil, ErrNotFound
	}

	if _, err := s.gateway.GetOrCreateUser(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to load buyer: %w", err)
	}

	pending := events.NewTransactionalBus(s.publisher)
	if item.Price > 0 {
		ok, err := s.gateway.RemoveBalance(ctx, key, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to charge %s: %w", key, err)
		}
		if !ok {
			return nil, ErrInsufficientBalance
		}
		pending.Publish(events.BalanceChangedEvent{UserID: key.UserID, GuildID: key.GuildID, Amount: -item.Price, Reason: "purchase"})
	}

	added, err := s.gateway.AddItem(ctx, key, item.ToInventoryItem(s.gateway.now()))
	if err == nil && !added {
		err = ErrNotFound
	}
	if err != nil {
		pending.Discard()
		s.refund(ctx, key, item.Price)
		return nil, fmt.Errorf("failed to add %s to inventory: %w", item.Name, err)
	}

	pending.Flush(ctx)
	return item, nil
}

func (s *economyService) refund(ctx context.Context, key models.UserKey, amount int64) {
	if amount <= 0 {
		return
	}
	if _, err := s.gateway.AddBalance(ctx, key, amount); err != nil {
		log.WithFields(log.Fields{
			"user_id":  key.UserID,
			"guild_id": key.GuildID,
			"amount":   amount,
		}).WithError(err).Error("Failed to refund purchase")
	}
}

// AddShopItem lists a new item in the guild's shop
func (s *economyService) AddShopItem(ctx context.Context, guildID int64, name, description string, price int64) (*models.ShopItem, error) {
	item, err := s.gateway.CreateShopItem(ctx, guildID, name, description, price)
	if err != nil {
		if errors.Is(err, ErrInvalidUpdate) || errors.Is(err, ErrPersistenceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create shop item: %w", err)
	}
	return item, nil
}

// Shop lists the guild's items
func (s *economyService) Shop(ctx context.Context, guildID int64) ([]*models.ShopItem, error) {
	return s.gateway.ShopItems(ctx, guildID)
}
