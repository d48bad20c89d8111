package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// CommandAPI is the slice of *discordgo.Session used to publish slash commands
type CommandAPI interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// CommandPublisher republishes the loaded command catalog to the platform
type CommandPublisher struct {
	api     CommandAPI
	appID   func() string
	guildID string
	host    *ModuleHost
}

// NewCommandPublisher publishes to guildID when set, otherwise globally.
// appID is resolved on every publish since it is only known once the session is open.
func NewCommandPublisher(api CommandAPI, appID func() string, guildID string, host *ModuleHost) *CommandPublisher {
	return &CommandPublisher{api: api, appID: appID, guildID: guildID, host: host}
}

// Publish overwrites the remote catalog and returns the number of published commands
func (p *CommandPublisher) Publish(ctx context.Context) (int, error) {
	appID := p.appID()
	if appID == "" {
		return 0, fmt.Errorf("application ID unknown, session not open")
	}

	commands := p.host.Commands()
	definitions := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, cmd := range commands {
		definitions = append(definitions, cmd.ApplicationCommand())
	}

	published, err := p.api.ApplicationCommandBulkOverwrite(appID, p.guildID, definitions, discordgo.WithContext(ctx))
	if err != nil {
		return 0, mapPlatformError(fmt.Errorf("failed to publish commands: %w", err))
	}

	log.WithFields(log.Fields{
		"count":    len(published),
		"guild_id": p.guildID,
	}).Info("Published slash commands")
	return len(published), nil
}
