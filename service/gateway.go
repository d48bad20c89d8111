package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"logiq/models"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultLeaderboardLimit is used when callers pass a non-positive limit
	DefaultLeaderboardLimit = 10
	// MaxLeaderboardLimit caps one leaderboard page
	MaxLeaderboardLimit = 100
	// MaxDueReminders caps one due-reminder scan
	MaxDueReminders = 100
	// MaxShopItems caps one shop listing
	MaxShopItems = 100
	// MaxOpenTickets caps the open tickets of one member in one guild
	MaxOpenTickets = 3
)

// Defaults are the record shapes new users and guilds start from
type Defaults struct {
	User  models.UserDefaults
	Guild models.GuildDefaults
}

// Gateway is the single entry point to persistence.
// It owns the connection lifecycle; every operation fails with ErrPersistenceUnavailable while disconnected.
type Gateway struct {
	dial     Dialer
	defaults Defaults
	now      func() time.Time

	mu    sync.RWMutex
	store Store
}

// NewGateway creates a disconnected gateway
func NewGateway(dial Dialer, defaults Defaults) *Gateway {
	return &Gateway{
		dial:     dial,
		defaults: defaults,
		now:      time.Now,
	}
}

// Connect dials the backend. The dialer's reachability check error is returned unchanged.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.store != nil {
		return nil
	}

	store, err := g.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to persistence backend: %w", err)
	}
	g.store = store
	log.Info("Persistence gateway connected")
	return nil
}

// Disconnect releases the backend. Safe to call repeatedly or when never connected.
func (g *Gateway) Disconnect(ctx context.Context) error {
	g.mu.Lock()
	store := g.store
	g.store = nil
	g.mu.Unlock()

	if store == nil {
		return nil
	}
	if err := store.Close(ctx); err != nil {
		return fmt.Errorf("failed to close persistence backend: %w", err)
	}
	log.Info("Persistence gateway disconnected")
	return nil
}

// IsConnected reports readiness
func (g *Gateway) IsConnected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store != nil
}

// Defaults returns the record defaults the gateway was built with
func (g *Gateway) Defaults() Defaults {
	return g.defaults
}

func (g *Gateway) current() (Store, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.store == nil {
		return nil, ErrPersistenceUnavailable
	}
	return g.store, nil
}

// GetUser returns the record for key, or nil when absent
func (g *Gateway) GetUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Users().Get(ctx, key)
}

// CreateUser stores the defaults merged with overrides unless a record already exists.
// The stored record is returned in both cases.
func (g *Gateway) CreateUser(ctx context.Context, key models.UserKey, overrides models.UserUpdate) (*models.User, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	if err := overrides.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	user := models.NewUser(key, g.defaults.User, overrides, g.now())
	stored, err := store.Users().CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", key, err)
	}
	return stored, nil
}

// GetOrCreateUser returns the existing record or one created from defaults, in one round trip
func (g *Gateway) GetOrCreateUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	return g.CreateUser(ctx, key, models.UserUpdate{})
}

// UpdateUser replaces the patched fields. It never creates a record.
func (g *Gateway) UpdateUser(ctx context.Context, key models.UserKey, update models.UserUpdate) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if err := update.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if update.IsEmpty() {
		return false, nil
	}
	return store.Users().Update(ctx, key, update)
}

// IncrementUser applies delta to counter atomically; a zero delta changes nothing
func (g *Gateway) IncrementUser(ctx context.Context, key models.UserKey, counter models.UserCounter, delta int64) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if !counter.Valid() {
		return false, fmt.Errorf("%w: field %q cannot be incremented", ErrInvalidUpdate, counter)
	}
	if delta == 0 {
		return false, nil
	}
	return store.Users().Increment(ctx, key, counter, delta)
}

// AddBalance credits a positive amount
func (g *Gateway) AddBalance(ctx context.Context, key models.UserKey, amount int64) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	return g.IncrementUser(ctx, key, models.CounterBalance, amount)
}

// RemoveBalance debits amount only if the balance covers it.
// The check and the write are one conditional store operation, so concurrent debits never overdraw.
func (g *Gateway) RemoveBalance(ctx context.Context, key models.UserKey, amount int64) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	return store.Users().DeductBalance(ctx, key, amount)
}

// Transfer moves amount from one existing record to another
func (g *Gateway) Transfer(ctx context.Context, from, to models.UserKey, amount int64) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	return store.Users().Transfer(ctx, from, to, amount)
}

// AddItem appends to the user's inventory
func (g *Gateway) AddItem(ctx context.Context, key models.UserKey, item models.InventoryItem) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if item.AcquiredAt.IsZero() {
		item.AcquiredAt = g.now().UTC().Truncate(time.Microsecond)
	}
	return store.Users().AppendItem(ctx, key, item)
}

// AddWarning appends to the user's warnings, assigning an ID and timestamp when missing
func (g *Gateway) AddWarning(ctx context.Context, key models.UserKey, warning models.Warning) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if warning.ID == "" {
		warning.ID = newID()
	}
	if warning.CreatedAt.IsZero() {
		warning.CreatedAt = g.now().UTC().Truncate(time.Microsecond)
	}
	return store.Users().AppendWarning(ctx, key, warning)
}

// GetWarnings returns the user's warnings; an absent record has none
func (g *Gateway) GetWarnings(ctx context.Context, key models.UserKey) ([]models.Warning, error) {
	user, err := g.GetUser(ctx, key)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []models.Warning{}, nil
	}
	return user.Warnings, nil
}

// Leaderboard returns up to limit records of guild ordered by xp descending.
// Non-positive limits fall back to DefaultLeaderboardLimit.
func (g *Gateway) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	return store.Users().Leaderboard(ctx, guildID, limit)
}

// GetGuild returns the guild's configuration, or nil when none was stored yet
func (g *Gateway) GetGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Guilds().Get(ctx, guildID)
}

// CreateGuild stores the defaults merged with overrides unless the guild already has a record
func (g *Gateway) CreateGuild(ctx context.Context, guildID int64, overrides models.GuildUpdate) (*models.Guild, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	if err := overrides.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	guild := models.NewGuild(guildID, g.defaults.Guild, overrides, g.now())
	stored, err := store.Guilds().CreateIfAbsent(ctx, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild %d: %w", guildID, err)
	}
	return stored, nil
}

// GetOrCreateGuild upserts the guild's record in one round trip
func (g *Gateway) GetOrCreateGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	return g.CreateGuild(ctx, guildID, models.GuildUpdate{})
}

// UpdateGuild applies the patch; module flags are merged into the stored ones
func (g *Gateway) UpdateGuild(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if err := update.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if update.IsEmpty() {
		return false, nil
	}
	return store.Guilds().Update(ctx, guildID, update)
}

// CreateTicket opens a ticket and returns it with its store-assigned ID.
// ErrTicketLimit is returned when the member already has MaxOpenTickets open.
func (g *Gateway) CreateTicket(ctx context.Context, guildID, userID, channelID int64, subject string) (*models.Ticket, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: ticket subject cannot be empty", ErrInvalidUpdate)
	}

	ticket := &models.Ticket{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		Subject:   subject,
		Status:    models.TicketStatusOpen,
		CreatedAt: g.now().UTC().Truncate(time.Microsecond),
	}
	created, err := store.Tickets().Create(ctx, ticket, MaxOpenTickets)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrTicketLimit
	}
	return ticket, nil
}

// GetTicket returns the ticket, or nil when absent
func (g *Gateway) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Tickets().Get(ctx, id)
}

// UpdateTicket applies the patch
func (g *Gateway) UpdateTicket(ctx context.Context, id string, update models.TicketUpdate) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	if err := update.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if update.IsEmpty() {
		return false, nil
	}
	return store.Tickets().Update(ctx, id, update)
}

// CloseTicket marks the ticket closed now
func (g *Gateway) CloseTicket(ctx context.Context, id string) (bool, error) {
	closedAt := g.now().UTC().Truncate(time.Microsecond)
	return g.UpdateTicket(ctx, id, models.TicketUpdate{
		Status:   models.Set(models.TicketStatusClosed),
		ClosedAt: models.Set(&closedAt),
	})
}

// OpenTickets lists a member's open tickets in a guild
func (g *Gateway) OpenTickets(ctx context.Context, guildID, userID int64) ([]*models.Ticket, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Tickets().ListOpen(ctx, guildID, userID)
}

// CreateReminder schedules a reminder and returns it with its store-assigned ID
func (g *Gateway) CreateReminder(ctx context.Context, guildID, userID, channelID int64, message string, remindAt time.Time) (*models.Reminder, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}

	reminder := &models.Reminder{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		Message:   message,
		RemindAt:  remindAt.UTC().Truncate(time.Microsecond),
		CreatedAt: g.now().UTC().Truncate(time.Microsecond),
	}
	if err := store.Reminders().Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// DueReminders lists incomplete reminders due at or before t
func (g *Gateway) DueReminders(ctx context.Context, t time.Time) ([]*models.Reminder, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Reminders().ListDue(ctx, t, MaxDueReminders)
}

// CompleteReminder marks the reminder done
func (g *Gateway) CompleteReminder(ctx context.Context, id string) (bool, error) {
	store, err := g.current()
	if err != nil {
		return false, err
	}
	return store.Reminders().Complete(ctx, id)
}

// ShopItems lists a guild's shop
func (g *Gateway) ShopItems(ctx context.Context, guildID int64) ([]*models.ShopItem, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Shop().List(ctx, guildID, MaxShopItems)
}

// CreateShopItem adds an item to a guild's shop
func (g *Gateway) CreateShopItem(ctx context.Context, guildID int64, name, description string, price int64) (*models.ShopItem, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name cannot be empty", ErrInvalidUpdate)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidUpdate)
	}

	item := &models.ShopItem{
		GuildID:     guildID,
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   g.now().UTC().Truncate(time.Microsecond),
	}
	if err := store.Shop().Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetShopItem returns the item, or nil when absent
func (g *Gateway) GetShopItem(ctx context.Context, id string) (*models.ShopItem, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Shop().Get(ctx, id)
}

// LogEvent records an analytics event, stamping it when no timestamp is set
func (g *Gateway) LogEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	store, err := g.current()
	if err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = g.now().UTC().Truncate(time.Microsecond)
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	return store.Analytics().Log(ctx, event)
}

// Analytics returns the matching events newest first, capped at models.MaxAnalyticsResults
func (g *Gateway) Analytics(ctx context.Context, filter models.AnalyticsFilter) ([]*models.AnalyticsEvent, error) {
	store, err := g.current()
	if err != nil {
		return nil, err
	}
	return store.Analytics().Query(ctx, filter, models.MaxAnalyticsResults)
}
