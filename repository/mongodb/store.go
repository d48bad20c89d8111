package mongodb

import (
	"context"
	"fmt"
	"time"

	"logiq/service"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names are part of the stored-record contract
const (
	usersCollection     = "users"
	guildsCollection    = "guilds"
	ticketsCollection   = "tickets"
	remindersCollection = "reminders"
	shopCollection      = "shop"
	analyticsCollection = "analytics"

	ticketCountersCollection = "ticket_counters"
)

// Store is the MongoDB persistence backend
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	users     *UserRepository
	guilds    *GuildRepository
	tickets   *TicketRepository
	reminders *ReminderRepository
	shop      *ShopRepository
	analytics *AnalyticsRepository
}

// NewStore wires every repository to db
func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:    client,
		db:        db,
		users:     &UserRepository{coll: db.Collection(usersCollection)},
		guilds:    &GuildRepository{coll: db.Collection(guildsCollection)},
		tickets:   &TicketRepository{coll: db.Collection(ticketsCollection), counters: db.Collection(ticketCountersCollection)},
		reminders: &ReminderRepository{coll: db.Collection(remindersCollection)},
		shop:      &ShopRepository{coll: db.Collection(shopCollection)},
		analytics: &AnalyticsRepository{coll: db.Collection(analyticsCollection)},
	}
}

func (s *Store) Users() service.UserRepository { return s.users }
func (s *Store) Guilds() service.GuildRepository { return s.guilds }
func (s *Store) Tickets() service.TicketRepository { return s.tickets }
func (s *Store) Reminders() service.ReminderRepository { return s.reminders }
func (s *Store) Shop() service.ShopRepository { return s.shop }
func (s *Store) Analytics() service.AnalyticsRepository { return s.analytics }

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique keys and query indexes; safe to run on every start
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "guild_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "xp", Value: -1}}},
		},
		guildsCollection: {
			{Keys: bson.D{{Key: "guild_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ticketsCollection: {
			{Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		remindersCollection: {
			{Keys: bson.D{{Key: "completed", Value: 1}, {Key: "remind_at", Value: 1}}},
		},
		shopCollection: {
			{Keys: bson.D{{Key: "guild_id", Value: 1}}},
		},
		analyticsCollection: {
			{Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Options configures the MongoDB dialer
type Options struct {
	URI            string
	Database       string
	PoolSize       uint64
	ConnectTimeout time.Duration
}

// Dialer returns a service.Dialer that connects, pings the primary and ensures indexes
func Dialer(opts Options) service.Dialer {
	return func(ctx context.Context) (service.Store, error) {
		clientOpts := options.Client().ApplyURI(opts.URI)
		if opts.PoolSize > 0 {
			clientOpts.SetMaxPoolSize(opts.PoolSize)
		}
		if opts.ConnectTimeout > 0 {
			clientOpts.SetConnectTimeout(opts.ConnectTimeout)
			clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
		}

		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo client: %w", err)
		}

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}

		store := NewStore(client, client.Database(opts.Database))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.WithField("database", opts.Database).Debug("MongoDB indexes ensured")

		return store, nil
	}
}
