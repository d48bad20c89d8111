package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"logiq/bot/common"
	"logiq/events"
	"logiq/models"

	log "github.com/sirupsen/logrus"
)

// GuildSource reads guild records; *service.Gateway satisfies it
type GuildSource interface {
	GetGuild(ctx context.Context, guildID int64) (*models.Guild, error)
}

// Dispatcher routes invocations from either surface to command handlers
type Dispatcher struct {
	host    *ModuleHost
	guilds  GuildSource
	emitter events.Emitter
	timeout time.Duration
}

func NewDispatcher(host *ModuleHost, guilds GuildSource, emitter events.Emitter) *Dispatcher {
	return &Dispatcher{
		host:    host,
		guilds:  guilds,
		emitter: emitter,
		timeout: common.CommandTimeout,
	}
}

// Dispatch runs one invocation and always produces a response
func (d *Dispatcher) Dispatch(ctx context.Context, inv *common.Invocation) *common.Response {
	cmd, module, ok := d.host.Lookup(inv.Command)
	if !ok {
		return common.Private(common.ErrorEmbed("Unknown Command", fmt.Sprintf("Command **%s** does not exist", inv.Command)))
	}

	if cmd.AdminOnly && !inv.IsAdmin {
		return common.Private(common.ErrorEmbed("Permission Denied", "You don't have permission to use this command."))
	}

	if module != common.ModuleAdmin && !d.moduleEnabled(ctx, inv.GuildID, module) {
		return common.Private(common.ErrorEmbed("Module Disabled",
			fmt.Sprintf("The **%s** module is disabled in this server.", common.TitleCase(module))))
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.run(runCtx, cmd, inv)

	if d.emitter != nil {
		d.emitter.Emit(ctx, events.CommandUsedEvent{
			GuildID: inv.GuildID,
			UserID:  inv.UserID,
			Command: inv.Command,
			Surface: string(inv.Surface),
			Failed:  err != nil,
		})
	}

	if err != nil {
		fields := log.Fields{
			"guild_id": inv.GuildID,
			"user_id":  inv.UserID,
			"command":  inv.Command,
			"surface":  inv.Surface,
		}
		if common.IsUserError(err) {
			log.WithFields(fields).WithError(err).Debug("Command rejected")
		} else {
			log.WithFields(fields).WithError(err).Error("Command failed")
		}
		return common.ErrorResponse(err)
	}

	if resp == nil || resp.Embed == nil {
		return common.Private(common.SuccessEmbed("Done", ""))
	}
	return resp
}

// run calls the handler, turning a panic into an error so one bad command never stops the event loop
func (d *Dispatcher) run(ctx context.Context, cmd *common.Command, inv *common.Invocation) (resp *common.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"command": cmd.Name,
				"panic":   r,
				"stack":   string(debug.Stack()),
			}).Error("Recovered from panic in command handler")
			resp, err = nil, fmt.Errorf("panic in command %s: %v", cmd.Name, r)
		}
	}()
	return cmd.Run(ctx, inv)
}

// moduleEnabled treats a missing guild record or unavailable persistence as enabled
func (d *Dispatcher) moduleEnabled(ctx context.Context, guildID int64, module string) bool {
	if d.guilds == nil {
		return true
	}
	guild, err := d.guilds.GetGuild(ctx, guildID)
	if err != nil || guild == nil {
		return true
	}
	return guild.ModuleEnabled(module)
}
