package common

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandlerFunc runs one command invocation and produces its response
type HandlerFunc func(ctx context.Context, inv *Invocation) (*Response, error)

// Command is declared once and served both as a slash command and as a prefixed text command
type Command struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
	AdminOnly   bool
	// Deferred commands acknowledge the interaction before running
	Deferred bool
	Run      HandlerFunc
}

// ApplicationCommand renders the slash command definition
func (c *Command) ApplicationCommand() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
	if c.AdminOnly {
		perms := int64(discordgo.PermissionAdministrator)
		cmd.DefaultMemberPermissions = &perms
	}
	return cmd
}

// Usage renders the prefix form, e.g. "purge <amount>"
func (c *Command) Usage(prefix string) string {
	usage := prefix + c.Name

	var subs []string
	for _, opt := range c.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			subs = append(subs, opt.Name)
			continue
		}
		usage += " " + optionUsage(opt)
	}
	if len(subs) > 0 {
		usage += " <" + strings.Join(subs, "|") + ">"
	}
	return usage
}

func optionUsage(opt *discordgo.ApplicationCommandOption) string {
	if opt.Required {
		return "<" + opt.Name + ">"
	}
	return "[" + opt.Name + "]"
}

// Option builders keep command tables short

func IntOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionInteger, Name: name, Description: description, Required: required}
}

func StringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: name, Description: description, Required: required}
}

func BoolOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionBoolean, Name: name, Description: description, Required: required}
}

func UserOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionUser, Name: name, Description: description, Required: required}
}

func ChannelOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         name,
		Description:  description,
		Required:     required,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

func SubCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionSubCommand, Name: name, Description: description, Options: options}
}
