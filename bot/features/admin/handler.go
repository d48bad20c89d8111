package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logiq/bot/common"
	"logiq/models"

	log "github.com/sirupsen/logrus"
)

const (
	minPurge = 1
	maxPurge = 100
)

func (f *Feature) handleReload(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	name, _ := inv.String("module")
	name = strings.ToLower(strings.TrimSpace(name))

	err := f.deps.Reloader.Reload(name)
	switch {
	case err == nil:
		log.WithFields(log.Fields{"user_id": inv.UserID, "module": name}).Info("Module reloaded")
		return common.Private(common.SuccessEmbed("Module Reloaded", fmt.Sprintf("Successfully reloaded **%s**", name))), nil
	case errors.Is(err, common.ErrModuleNotLoaded):
		return common.Private(common.ErrorEmbed("Error", fmt.Sprintf("Module **%s** is not loaded", name))), nil
	case errors.Is(err, common.ErrModuleNotFound):
		return common.Private(common.ErrorEmbed("Error", fmt.Sprintf("Module **%s** not found", name))), nil
	}

	log.WithError(err).WithField("module", name).Error("Error reloading module")
	return common.Private(common.ErrorEmbed("Error", fmt.Sprintf("Failed to reload: %v", err))), nil
}

func (f *Feature) handleSync(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	count, err := f.deps.Publisher.Publish(ctx)
	if err != nil {
		log.WithError(err).Error("Error syncing commands")
		return common.Private(common.ErrorEmbed("Error", fmt.Sprintf("Failed to sync: %v", err))), nil
	}

	log.WithField("user_id", inv.UserID).Info("Commands synced")
	return common.Private(common.SuccessEmbed("Commands Synced", fmt.Sprintf("Successfully synced **%d** commands", count))), nil
}

func (f *Feature) handleModules(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	var description strings.Builder
	for _, module := range f.deps.Modules {
		status := "🟢 Enabled"
		if !module.Enabled {
			status = "🔴 Disabled"
		}
		fmt.Fprintf(&description, "**%s**: %s\n", common.TitleCase(module.Name), status)
	}

	text := description.String()
	if text == "" {
		text = "No modules configured"
	}

	embed := common.NewEmbed("📦 Bot Modules", common.ColorInfo)
	embed.Description = text
	return common.Private(embed), nil
}

func (f *Feature) handleBotInfo(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	stats := f.deps.State.Stats()
	snapshot := f.deps.Snapshot

	embed := common.NewEmbed("🤖 Logiq Information", common.ColorPrimary,
		common.Field("📊 Servers", fmt.Sprintf("%d", stats.Guilds), true),
		common.Field("👥 Users", common.FormatBalance(int64(stats.Members)), true),
		common.Field("📺 Channels", fmt.Sprintf("%d", stats.Channels), true),
		common.Field("⏰ Uptime", common.FormatUptime(snapshot.Uptime(f.now())), true),
		common.Field("🐹 Go Version", snapshot.GoVersion, true),
		common.Field("📚 DiscordGo", snapshot.LibraryVersion, true),
		common.Field("💾 Database", snapshot.Database, true),
		common.Field("🔗 Latency", fmt.Sprintf("%dms", stats.Latency.Milliseconds()), true),
	)
	return common.Reply(embed), nil
}

func (f *Feature) handleSetLogChannel(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	channelID, ok := inv.ID("channel")
	if !ok {
		return nil, common.NewUserError("Invalid Channel", "Please provide a text channel")
	}

	if err := f.updateGuild(ctx, inv.GuildID, models.GuildUpdate{LogChannel: models.Set(&channelID)}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"guild_id": inv.GuildID, "channel_id": channelID}).Info("Log channel set")
	return common.Reply(common.SuccessEmbed("Log Channel Set",
		fmt.Sprintf("Moderation logs will be sent to %s", common.ChannelMention(channelID)))), nil
}

func (f *Feature) handleSetWelcomeChannel(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	channelID, ok := inv.ID("channel")
	if !ok {
		return nil, common.NewUserError("Invalid Channel", "Please provide a text channel")
	}

	if err := f.updateGuild(ctx, inv.GuildID, models.GuildUpdate{WelcomeChannel: models.Set(&channelID)}); err != nil {
		return nil, err
	}

	return common.Reply(common.SuccessEmbed("Welcome Channel Set",
		fmt.Sprintf("New members will be welcomed in %s", common.ChannelMention(channelID)))), nil
}

func (f *Feature) handleSetPrefix(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	prefix, _ := inv.String("prefix")
	prefix = strings.TrimSpace(prefix)

	update := models.GuildUpdate{Prefix: models.Set(prefix)}
	if err := update.Validate(); err != nil {
		return nil, common.NewUserError("Invalid Prefix", err.Error())
	}

	if err := f.updateGuild(ctx, inv.GuildID, update); err != nil {
		return nil, err
	}
	return common.Reply(common.SuccessEmbed("Prefix Updated", fmt.Sprintf("Text commands now use `%s`", prefix))), nil
}

func (f *Feature) handleToggleModule(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	name, _ := inv.String("module")
	name = strings.ToLower(strings.TrimSpace(name))
	enabled, ok := inv.Bool("enabled")
	if !ok {
		return nil, common.NewUserError("Invalid Arguments", "Please say whether the module should be enabled")
	}

	if name == common.ModuleAdmin {
		return nil, common.NewUserError("Invalid Module", "The admin module cannot be disabled")
	}
	if !f.knownModule(name) {
		return nil, common.NewUserError("Invalid Module", fmt.Sprintf("Module **%s** not found", name))
	}

	if err := f.updateGuild(ctx, inv.GuildID, models.GuildUpdate{ModuleFlags: map[string]bool{name: enabled}}); err != nil {
		return nil, err
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	return common.Reply(common.SuccessEmbed("Module Updated",
		fmt.Sprintf("**%s** is now %s in this server", common.TitleCase(name), state))), nil
}

func (f *Feature) handleConfig(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	guild, err := f.deps.Guilds.GetGuild(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return common.Private(common.InfoEmbed("No Configuration", "Server has no configuration yet")), nil
	}

	var disabled []string
	for _, module := range f.deps.Modules {
		if !guild.ModuleEnabled(module.Name) {
			disabled = append(disabled, common.TitleCase(module.Name))
		}
	}
	disabledText := "None"
	if len(disabled) > 0 {
		disabledText = strings.Join(disabled, ", ")
	}

	embed := common.NewEmbed("⚙️ Server Configuration", common.ColorInfo,
		common.Field("Prefix", fmt.Sprintf("`%s`", guild.Prefix), true),
		common.Field("Log Channel", common.OptionalChannel(guild.LogChannel), false),
		common.Field("Welcome Channel", common.OptionalChannel(guild.WelcomeChannel), false),
		common.Field("Verified Role", common.OptionalRole(guild.VerifiedRole), false),
		common.Field("Verification Type", string(guild.VerificationType), true),
		common.Field("Disabled Modules", disabledText, true),
	)
	return common.Private(embed), nil
}

func (f *Feature) handlePurge(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	amount, ok := inv.Int("amount")
	if !ok || amount < minPurge || amount > maxPurge {
		return nil, common.NewUserError("Invalid Amount", fmt.Sprintf("Amount must be between %d and %d", minPurge, maxPurge))
	}

	deleted, err := f.deps.Purger.Purge(ctx, inv.ChannelID, int(amount))
	if errors.Is(err, common.ErrMissingPermissions) {
		return common.Private(common.ErrorEmbed("Error", "I don't have permission to delete messages")), nil
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    inv.UserID,
		"channel_id": inv.ChannelID,
		"deleted":    deleted,
	}).Info("Messages purged")

	return &common.Response{
		Embed:       common.SuccessEmbed("Messages Purged", fmt.Sprintf("Deleted **%d** messages", deleted)),
		Ephemeral:   true,
		DeleteAfter: common.ConfirmationLifetime,
	}, nil
}

// updateGuild creates the guild record on first write, then applies update
func (f *Feature) updateGuild(ctx context.Context, guildID int64, update models.GuildUpdate) error {
	if _, err := f.deps.Guilds.GetOrCreateGuild(ctx, guildID); err != nil {
		return err
	}
	if _, err := f.deps.Guilds.UpdateGuild(ctx, guildID, update); err != nil {
		return err
	}
	return nil
}

func (f *Feature) knownModule(name string) bool {
	for _, module := range f.deps.Modules {
		if module.Name == name {
			return true
		}
	}
	return false
}
