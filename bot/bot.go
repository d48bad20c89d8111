package bot

import (
	"context"
	"fmt"
	"strings"

	"logiq/bot/common"
	"logiq/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token        string
	GuildID      string
	Prefix       string
	Activity     string
	ActivityType string
}

// NewSession creates an unopened session; modules are built against it before Start
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll
	return dg, nil
}

// ApplicationID resolves the bot's application ID once the session is open
func ApplicationID(session *discordgo.Session) func() string {
	return func() string {
		if session.State == nil || session.State.User == nil {
			return ""
		}
		return session.State.User.ID
	}
}

type Bot struct {
	config     Config
	session    *discordgo.Session
	host       *ModuleHost
	dispatcher *Dispatcher
	publisher  *CommandPublisher
	welcomer   *Welcomer
	guilds     GuildSource
}

func New(config Config, session *discordgo.Session, host *ModuleHost, publisher *CommandPublisher, guilds GuildSource, emitter events.Emitter, notifier common.Notifier) *Bot {
	return &Bot{
		config:     config,
		session:    session,
		host:       host,
		dispatcher: NewDispatcher(host, guilds, emitter),
		publisher:  publisher,
		welcomer:   NewWelcomer(guilds, notifier, emitter),
		guilds:     guilds,
	}
}

// Start opens the gateway connection, sets presence and publishes the command catalog
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleMessage)
	b.session.AddHandler(b.handleMemberAdd)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name: b.config.Activity,
			Type: activityType(b.config.ActivityType),
		}},
	}); err != nil {
		log.WithError(err).Warn("Failed to set presence")
	}

	// A failed publish leaves the previous catalog in place; sync can retry it
	if _, err := b.publisher.Publish(ctx); err != nil {
		log.WithError(err).Error("Failed to publish commands")
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.String(),
		"guilds": len(r.Guilds),
	}).Info("Logged in")
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil {
		_ = common.RespondWithEmbed(s, i, common.Private(common.ErrorEmbed("Error", "Commands can only be used in a server.")))
		return
	}

	inv, err := interactionInvocation(i)
	if err != nil {
		log.WithError(err).Warn("Malformed interaction")
		_ = common.RespondWithEmbed(s, i, common.ErrorResponse(err))
		return
	}

	cmd, _, found := b.host.Lookup(inv.Command)
	deferred := found && cmd.Deferred
	if deferred {
		if err := common.DeferResponse(s, i, true); err != nil {
			log.WithError(err).WithField("command", inv.Command).Error("Failed to defer interaction")
			return
		}
	}

	resp := b.dispatcher.Dispatch(context.Background(), inv)

	if deferred {
		err = common.EditDeferred(s, i, resp)
	} else {
		err = common.RespondWithEmbed(s, i, resp)
	}
	if err != nil {
		log.WithError(err).WithField("command", inv.Command).Error("Failed to respond to interaction")
		return
	}
	common.ScheduleInteractionDelete(s, i, resp)
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err1 := common.ParseID(m.GuildID)
	channelID, err2 := common.ParseID(m.ChannelID)
	userID, err3 := common.ParseID(m.Author.ID)
	if err1 != nil || err2 != nil || err3 != nil {
		log.WithField("message_id", m.ID).Warn("Message with malformed IDs")
		return
	}

	ctx := context.Background()
	prefix := b.prefixFor(ctx, guildID)

	name, rest, ok := splitCommand(m.Content, prefix)
	if ok {
		if cmd, _, found := b.host.Lookup(name); found {
			inv := common.NewInvocation(common.SurfacePrefix, cmd.Name, guildID, channelID, userID)
			inv.Prefix = prefix
			inv.IsAdmin = b.isAdmin(m)

			var resp *common.Response
			if err := parsePrefixArgs(inv, cmd, rest); err != nil {
				resp = common.ErrorResponse(err)
			} else {
				resp = b.dispatcher.Dispatch(ctx, inv)
			}
			if _, err := common.SendToChannel(s, m.ChannelID, resp); err != nil {
				log.WithError(err).WithField("command", cmd.Name).Error("Failed to send command response")
			}
			return
		}
	}

	event := common.MessageEvent{GuildID: guildID, ChannelID: channelID, UserID: userID, Content: m.Content}
	for _, handler := range b.host.MessageHandlers() {
		handler.HandleMessage(ctx, event)
	}
}

func (b *Bot) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		return
	}

	if err := b.welcomer.Welcome(context.Background(), guildID, userID); err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to welcome member")
	}
}

// prefixFor returns the guild's configured prefix, or the default when there is none or persistence is down
func (b *Bot) prefixFor(ctx context.Context, guildID int64) string {
	if b.guilds != nil {
		if guild, err := b.guilds.GetGuild(ctx, guildID); err == nil && guild != nil && guild.Prefix != "" {
			return guild.Prefix
		}
	}
	return b.config.Prefix
}

func (b *Bot) isAdmin(m *discordgo.MessageCreate) bool {
	perms, err := b.session.State.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		perms, err = b.session.UserChannelPermissions(m.Author.ID, m.ChannelID)
		if err != nil {
			log.WithError(err).Debug("Failed to resolve member permissions")
			return false
		}
	}
	return perms&discordgo.PermissionAdministrator != 0
}

// interactionInvocation builds an invocation from a slash command interaction
func interactionInvocation(i *discordgo.InteractionCreate) (*common.Invocation, error) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return nil, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("invalid channel ID %q: %w", i.ChannelID, err)
	}
	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", i.Member.User.ID, err)
	}

	data := i.ApplicationCommandData()
	inv := common.NewInvocation(common.SurfaceSlash, data.Name, guildID, channelID, userID)
	inv.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	inv.Prefix = "/"

	if err := slashArgs(inv, data.Options); err != nil {
		return nil, err
	}
	return inv, nil
}

func activityType(name string) discordgo.ActivityType {
	switch strings.ToLower(name) {
	case "playing":
		return discordgo.ActivityTypeGame
	case "streaming":
		return discordgo.ActivityTypeStreaming
	case "listening":
		return discordgo.ActivityTypeListening
	}
	return discordgo.ActivityTypeWatching
}
