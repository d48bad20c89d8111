package admin

import (
	"context"
	"time"

	"logiq/bot/common"
	"logiq/models"

	"github.com/bwmarrin/discordgo"
)

// ModuleReloader hot-reloads a module by name
type ModuleReloader interface {
	Reload(name string) error
}

// CommandPublisher republishes the command catalog
type CommandPublisher interface {
	Publish(ctx context.Context) (int, error)
}

// Purger deletes recent channel messages
type Purger interface {
	Purge(ctx context.Context, channelID int64, amount int) (int, error)
}

// GuildStore is the slice of the persistence gateway the admin commands use
type GuildStore interface {
	GetGuild(ctx context.Context, guildID int64) (*models.Guild, error)
	GetOrCreateGuild(ctx context.Context, guildID int64) (*models.Guild, error)
	UpdateGuild(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error)
}

// ModuleFlag is a module's enabled flag from static configuration
type ModuleFlag struct {
	Name    string
	Enabled bool
}

// Deps are the collaborators of the admin feature
type Deps struct {
	Reloader  ModuleReloader
	Publisher CommandPublisher
	Purger    Purger
	Guilds    GuildStore
	Modules   []ModuleFlag
	Snapshot  common.Snapshot
	State     common.StateReader
}

// Feature handles bot management and server configuration
type Feature struct {
	deps Deps
	now  func() time.Time
}

// NewFeature creates a new admin feature instance
func NewFeature(deps Deps) *Feature {
	return &Feature{deps: deps, now: time.Now}
}

func (f *Feature) Name() string {
	return common.ModuleAdmin
}

// Commands returns the admin command table
func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "reload",
			Description: "Reload a module",
			Options:     []*discordgo.ApplicationCommandOption{common.StringOption("module", "Name of the module to reload", true)},
			AdminOnly:   true,
			Run:         f.handleReload,
		},
		{
			Name:        "sync",
			Description: "Sync slash commands",
			AdminOnly:   true,
			Deferred:    true,
			Run:         f.handleSync,
		},
		{
			Name:        "modules",
			Description: "View module status",
			AdminOnly:   true,
			Run:         f.handleModules,
		},
		{
			Name:        "botinfo",
			Description: "View bot information",
			Run:         f.handleBotInfo,
		},
		{
			Name:        "setlogchannel",
			Description: "Set the log channel",
			Options:     []*discordgo.ApplicationCommandOption{common.ChannelOption("channel", "Channel for moderation logs", true)},
			AdminOnly:   true,
			Run:         f.handleSetLogChannel,
		},
		{
			Name:        "setwelcomechannel",
			Description: "Set the welcome channel",
			Options:     []*discordgo.ApplicationCommandOption{common.ChannelOption("channel", "Channel for welcome messages", true)},
			AdminOnly:   true,
			Run:         f.handleSetWelcomeChannel,
		},
		{
			Name:        "setprefix",
			Description: "Set the prefix for text commands",
			Options:     []*discordgo.ApplicationCommandOption{common.StringOption("prefix", "New prefix (1-5 characters)", true)},
			AdminOnly:   true,
			Run:         f.handleSetPrefix,
		},
		{
			Name:        "togglemodule",
			Description: "Enable or disable a module in this server",
			Options: []*discordgo.ApplicationCommandOption{
				common.StringOption("module", "Module name", true),
				common.BoolOption("enabled", "Whether the module is enabled", true),
			},
			AdminOnly: true,
			Run:       f.handleToggleModule,
		},
		{
			Name:        "config",
			Description: "View server configuration",
			AdminOnly:   true,
			Run:         f.handleConfig,
		},
		{
			Name:        "purge",
			Description: "Delete messages in bulk",
			Options:     []*discordgo.ApplicationCommandOption{common.IntOption("amount", "Number of messages to delete (1-100)", true)},
			AdminOnly:   true,
			Deferred:    true,
			Run:         f.handlePurge,
		},
	}
}
