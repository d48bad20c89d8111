package service

import (
	"context"
	"time"

	"logiq/events"
	"logiq/models"
)

// UserRepository defines the interface for user record access.
// Lookups return (nil, nil) when the record does not exist.
type UserRepository interface {
	// Get retrieves a user record by key
	Get(ctx context.Context, key models.UserKey) (*models.User, error)

	// CreateIfAbsent inserts user unless a record with the same key exists, returning the stored record
	CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, error)

	// Update replaces the patched fields; reports false if the record is absent or nothing changed
	Update(ctx context.Context, key models.UserKey, update models.UserUpdate) (bool, error)

	// Increment applies an atomic delta to a numeric field
	Increment(ctx context.Context, key models.UserKey, counter models.UserCounter, delta int64) (bool, error)

	// DeductBalance decrements the balance only if it covers amount, in one conditional write
	DeductBalance(ctx context.Context, key models.UserKey, amount int64) (bool, error)

	// Transfer moves amount between two existing records; false when the sender cannot cover it
	Transfer(ctx context.Context, from, to models.UserKey, amount int64) (bool, error)

	// AppendItem appends one entry to the inventory
	AppendItem(ctx context.Context, key models.UserKey, item models.InventoryItem) (bool, error)

	// AppendWarning appends one entry to the warnings
	AppendWarning(ctx context.Context, key models.UserKey, warning models.Warning) (bool, error)

	// Leaderboard returns a guild's records ordered by xp descending
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error)
}

// GuildRepository defines the interface for guild configuration access
type GuildRepository interface {
	Get(ctx context.Context, guildID int64) (*models.Guild, error)

	// CreateIfAbsent upserts guild without touching an existing record, returning the stored record
	CreateIfAbsent(ctx context.Context, guild *models.Guild) (*models.Guild, error)

	Update(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error)
}

// TicketRepository defines the interface for support ticket access
type TicketRepository interface {
	// Create stores ticket and assigns its ID unless the member already has maxOpen open
	// tickets; the check and insert are one atomic step. maxOpen <= 0 disables the cap.
	Create(ctx context.Context, ticket *models.Ticket, maxOpen int) (bool, error)
	Get(ctx context.Context, id string) (*models.Ticket, error)
	Update(ctx context.Context, id string, update models.TicketUpdate) (bool, error)
	ListOpen(ctx context.Context, guildID, userID int64) ([]*models.Ticket, error)
}

// ReminderRepository defines the interface for reminder access
type ReminderRepository interface {
	// Create stores reminder and assigns its ID
	Create(ctx context.Context, reminder *models.Reminder) error

	// ListDue returns incomplete reminders with remind_at <= t, oldest first
	ListDue(ctx context.Context, t time.Time, limit int) ([]*models.Reminder, error)

	// Complete marks a reminder done; false if it was already completed or does not exist
	Complete(ctx context.Context, id string) (bool, error)
}

// ShopRepository defines the interface for shop item access
type ShopRepository interface {
	List(ctx context.Context, guildID int64, limit int) ([]*models.ShopItem, error)

	// Create stores item and assigns its ID
	Create(ctx context.Context, item *models.ShopItem) error
	Get(ctx context.Context, id string) (*models.ShopItem, error)
}

// AnalyticsRepository defines the interface for analytics event storage
type AnalyticsRepository interface {
	// Log stores event and assigns its ID
	Log(ctx context.Context, event *models.AnalyticsEvent) error

	// Query returns matching events, newest first
	Query(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]*models.AnalyticsEvent, error)
}

// Store is one connected persistence backend
type Store interface {
	Users() UserRepository
	Guilds() GuildRepository
	Tickets() TicketRepository
	Reminders() ReminderRepository
	Shop() ShopRepository
	Analytics() AnalyticsRepository

	// Close releases the backend's connections
	Close(ctx context.Context) error
}

// Dialer opens a Store, failing if the backend does not answer its reachability check
type Dialer func(ctx context.Context) (Store, error)

// EventPublisher publishes domain events
type EventPublisher = events.Emitter

// Economy defines the balance and shop operations exposed to commands
type Economy interface {
	Balance(ctx context.Context, key models.UserKey) (*models.User, error)
	Pay(ctx context.Context, from, to models.UserKey, amount int64) error
	Buy(ctx context.Context, key models.UserKey, itemID string) (*models.ShopItem, error)
	AddShopItem(ctx context.Context, guildID int64, name, description string, price int64) (*models.ShopItem, error)
	Shop(ctx context.Context, guildID int64) ([]*models.ShopItem, error)
}

// Leveling defines the experience operations
type Leveling interface {
	// AwardMessageXP grants message XP unless the member is still on cooldown
	AwardMessageXP(ctx context.Context, key models.UserKey, channelID int64) (*LevelProgress, error)

	// Reset forgets every cooldown
	Reset()
}

// Moderation defines the warning operations
type Moderation interface {
	Warn(ctx context.Context, key models.UserKey, moderatorID int64, reason string) (*models.Warning, error)
	Warnings(ctx context.Context, key models.UserKey) ([]models.Warning, error)
}

// Stats defines the activity summaries built from recorded analytics
type Stats interface {
	GuildActivity(ctx context.Context, guildID int64, days int) (*models.ActivitySummary, error)
}
