package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"logiq/bot"
	"logiq/bot/common"
	"logiq/bot/features/admin"
	"logiq/bot/features/economy"
	"logiq/bot/features/leveling"
	"logiq/bot/features/moderation"
	"logiq/bot/features/reminders"
	"logiq/bot/features/stats"
	"logiq/bot/features/tickets"
	"logiq/config"
	"logiq/events"
	"logiq/models"
	"logiq/repository"
	"logiq/repository/mongodb"
	"logiq/service"

	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long in-flight event handlers and the store get to finish
const shutdownTimeout = 10 * time.Second

// Options are the command line inputs of Run
type Options struct {
	ConfigPath string
}

// Run initializes and starts the application
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(cfg.Logging)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"driver":      cfg.Database.Driver,
	}).Info("Starting Logiq...")
	startedAt := time.Now()

	// Persistence is optional: the bot keeps serving commands that do not need it
	gateway := service.NewGateway(dialerFor(cfg.Database), service.Defaults{
		User:  models.UserDefaults{Balance: cfg.Economy.StartingBalance},
		Guild: models.GuildDefaults{Prefix: cfg.Bot.Prefix},
	})
	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	if err := gateway.Connect(connectCtx); err != nil {
		log.WithError(err).Error("Failed to connect to database, continuing without persistence")
	} else {
		log.Info("Database connection established successfully")
	}
	cancelConnect()

	eventBus := events.NewBus()
	service.NewAnalyticsRecorder(gateway).Register(eventBus)

	economyService := service.NewEconomyService(gateway, eventBus)
	levelingService := service.NewLevelingService(gateway, eventBus, cfg.Leveling.XPPerMessage, cfg.Leveling.Cooldown)
	moderationService := service.NewModerationService(gateway, eventBus)
	statsService := service.NewStatsService(gateway)

	session, err := bot.NewSession(cfg.Bot.Token)
	if err != nil {
		return err
	}
	notifier := bot.NewNotifier(session)
	host := bot.NewModuleHost()
	publisher := bot.NewCommandPublisher(session, bot.ApplicationID(session), cfg.Bot.GuildID, host)

	levelingFeature := leveling.New(levelingService, gateway, notifier, bot.NewNameResolver(session))
	levelingFeature.Subscribe(eventBus)
	moderationFeature := moderation.New(moderationService, gateway, notifier)
	moderationFeature.Subscribe(eventBus)

	modules := []bot.Module{
		admin.NewFeature(admin.Deps{
			Reloader:  host,
			Publisher: publisher,
			Purger:    bot.NewChannelPurger(session),
			Guilds:    gateway,
			Modules:   moduleFlags(cfg),
			Snapshot:  bot.NewSnapshot(cfg.Database.Driver, startedAt),
			State:     bot.NewStateReader(session),
		}),
		economy.New(economyService),
		levelingFeature,
		moderationFeature,
		tickets.New(gateway),
		reminders.New(gateway),
		stats.NewFeature(statsService),
	}
	for _, module := range modules {
		enabled := module.Name() == common.ModuleAdmin || cfg.ModuleEnabled(module.Name())
		if err := host.Register(module, enabled); err != nil {
			return fmt.Errorf("failed to register module %s: %w", module.Name(), err)
		}
	}

	discordBot := bot.New(bot.Config{
		Token:        cfg.Bot.Token,
		GuildID:      cfg.Bot.GuildID,
		Prefix:       cfg.Bot.Prefix,
		Activity:     cfg.Bot.Activity,
		ActivityType: cfg.Bot.ActivityType,
	}, session, host, publisher, gateway, eventBus, notifier)
	if err := discordBot.Start(ctx); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	workerDone := make(chan struct{})
	if cfg.ModuleEnabled(common.ModuleReminders) {
		go func() {
			defer close(workerDone)
			reminders.NewWorker(gateway, notifier, cfg.Reminders.PollInterval).Run(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")
	stopWorkers()
	<-workerDone

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord session")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	handlersDone := make(chan struct{})
	go func() {
		eventBus.Wait()
		close(handlersDone)
	}()
	select {
	case <-handlersDone:
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded waiting for event handlers")
	}

	if err := gateway.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("Error closing database connection")
	}

	log.Info("Shutdown completed")
	return nil
}

// dialerFor picks the store backend named by the configuration
func dialerFor(cfg config.DatabaseConfig) service.Dialer {
	if cfg.Driver == config.DriverMongoDB {
		return mongodb.Dialer(mongodb.Options{
			URI:            cfg.URI,
			Database:       cfg.Name,
			PoolSize:       uint64(cfg.PoolSize),
			ConnectTimeout: cfg.ConnectTimeout,
		})
	}
	return repository.Dialer(repository.Options{
		URL:          cfg.URI,
		DatabaseName: cfg.Name,
		PoolSize:     cfg.PoolSize,
		AutoMigrate:  cfg.AutoMigrate,
	})
}

func moduleFlags(cfg *config.Config) []admin.ModuleFlag {
	flags := make([]admin.ModuleFlag, 0, len(config.KnownModules))
	for _, name := range config.KnownModules {
		flags = append(flags, admin.ModuleFlag{Name: name, Enabled: cfg.ModuleEnabled(name)})
	}
	return flags
}

// setupLogging configures the global logrus logger
func setupLogging(cfg config.LoggingConfig) {
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		log.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
