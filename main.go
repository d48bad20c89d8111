package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"logiq/cmd"
	"logiq/config"
	"logiq/database"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("logiq", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", config.DefaultPath, "path to the YAML configuration file")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: logiq [--config path] [migrate up|down [steps]|status]\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) > 0 && args[0] == "migrate" {
		if err := handleMigrationCommand(*configPath, args[1:]); err != nil {
			log.WithError(err).Fatal("Migration error")
		}
		return
	}
	if len(args) > 0 {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx, cmd.Options{ConfigPath: *configPath}); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func handleMigrationCommand(configPath string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: logiq migrate [up|down|status] [args...]")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations apply to the %s driver only; %s indexes are created on connect", config.DriverPostgres, cfg.Database.Driver)
	}
	databaseURL := database.ConstructDatabaseURL(cfg.Database.URI, cfg.Database.Name)

	switch args[0] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[1], err)
			}
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
