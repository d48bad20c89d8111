package repository

import (
	"context"
	"fmt"

	"logiq/database"
	"logiq/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// queryable is satisfied by both the pool and a transaction
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL persistence backend
type Store struct {
	db        *database.DB
	users     *UserRepository
	guilds    *GuildRepository
	tickets   *TicketRepository
	reminders *ReminderRepository
	shop      *ShopRepository
	analytics *AnalyticsRepository
}

// NewStore wires every repository to db
func NewStore(db *database.DB) *Store {
	return &Store{
		db:        db,
		users:     NewUserRepository(db),
		guilds:    NewGuildRepository(db),
		tickets:   NewTicketRepository(db),
		reminders: NewReminderRepository(db),
		shop:      NewShopRepository(db),
		analytics: NewAnalyticsRepository(db),
	}
}

func (s *Store) Users() service.UserRepository { return s.users }
func (s *Store) Guilds() service.GuildRepository { return s.guilds }
func (s *Store) Tickets() service.TicketRepository { return s.tickets }
func (s *Store) Reminders() service.ReminderRepository { return s.reminders }
func (s *Store) Shop() service.ShopRepository { return s.shop }
func (s *Store) Analytics() service.AnalyticsRepository { return s.analytics }

// Close closes the pool
func (s *Store) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}

// Options configures the PostgreSQL dialer
type Options struct {
	URL          string
	DatabaseName string
	PoolSize     int
	AutoMigrate  bool
}

// Dialer returns a service.Dialer that connects, pings and optionally migrates
func Dialer(opts Options) service.Dialer {
	return func(ctx context.Context) (service.Store, error) {
		url := database.ConstructDatabaseURL(opts.URL, opts.DatabaseName)

		db, err := database.NewConnectionWithOptions(ctx, url, database.PoolOptions{MaxConns: int32(opts.PoolSize)})
		if err != nil {
			return nil, err
		}

		if opts.AutoMigrate {
			if err := database.RunMigrationsWithURL(url); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
			log.Debug("Database migrations applied")
		}

		return NewStore(db), nil
	}
}
