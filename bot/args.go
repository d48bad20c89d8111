package bot

import (
	"fmt"
	"strconv"
	"strings"

	"logiq/bot/common"

	"github.com/bwmarrin/discordgo"
)

// splitCommand splits prefixed content such as "!purge 10" into the command name and its raw arguments
func splitCommand(content, prefix string) (name, rest string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	body := strings.TrimSpace(content[len(prefix):])
	if body == "" {
		return "", "", false
	}

	name, rest, _ = strings.Cut(body, " ")
	return strings.ToLower(name), strings.TrimSpace(rest), true
}

// parsePrefixArgs fills inv from whitespace-separated arguments following the command's option table.
// A trailing string option takes the remainder of the line.
func parsePrefixArgs(inv *common.Invocation, cmd *common.Command, raw string) error {
	tokens := strings.Fields(raw)
	options := cmd.Options

	if sub := subcommands(options); len(sub) > 0 {
		if len(tokens) == 0 {
			return usageError(inv, cmd, "Missing subcommand")
		}
		chosen, ok := sub[strings.ToLower(tokens[0])]
		if !ok {
			return usageError(inv, cmd, fmt.Sprintf("Unknown subcommand **%s**", tokens[0]))
		}
		inv.Subcommand = chosen.Name
		options = chosen.Options
		tokens = tokens[1:]
	}

	for i, opt := range options {
		if len(tokens) == 0 {
			if opt.Required {
				return usageError(inv, cmd, fmt.Sprintf("Missing required argument: **%s**", opt.Name))
			}
			return nil
		}

		if opt.Type == discordgo.ApplicationCommandOptionString && i == len(options)-1 {
			inv.WithArg(opt.Name, strings.Join(tokens, " "))
			return nil
		}

		value, err := convertArg(opt, tokens[0])
		if err != nil {
			return usageError(inv, cmd, err.Error())
		}
		inv.WithArg(opt.Name, value)
		tokens = tokens[1:]
	}
	return nil
}

// slashArgs fills inv from interaction options
func slashArgs(inv *common.Invocation, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if len(options) == 1 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		inv.Subcommand = options[0].Name
		options = options[0].Options
	}

	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionInteger:
			inv.WithArg(opt.Name, opt.IntValue())
		case discordgo.ApplicationCommandOptionString:
			inv.WithArg(opt.Name, opt.StringValue())
		case discordgo.ApplicationCommandOptionBoolean:
			inv.WithArg(opt.Name, opt.BoolValue())
		case discordgo.ApplicationCommandOptionUser, discordgo.ApplicationCommandOptionChannel,
			discordgo.ApplicationCommandOptionRole, discordgo.ApplicationCommandOptionMentionable:
			raw, _ := opt.Value.(string)
			id, err := common.ParseID(raw)
			if err != nil {
				return fmt.Errorf("invalid %s option %q: %w", opt.Name, raw, err)
			}
			inv.WithArg(opt.Name, id)
		}
	}
	return nil
}

func subcommands(options []*discordgo.ApplicationCommandOption) map[string]*discordgo.ApplicationCommandOption {
	subs := make(map[string]*discordgo.ApplicationCommandOption)
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			subs[opt.Name] = opt
		}
	}
	return subs
}

func convertArg(opt *discordgo.ApplicationCommandOption, token string) (any, error) {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("**%s** must be a whole number", opt.Name)
		}
		return n, nil
	case discordgo.ApplicationCommandOptionBoolean:
		b, ok := parseBool(token)
		if !ok {
			return nil, fmt.Errorf("**%s** must be on or off", opt.Name)
		}
		return b, nil
	case discordgo.ApplicationCommandOptionChannel:
		return parseMention(opt.Name, token, "<#")
	case discordgo.ApplicationCommandOptionUser:
		return parseMention(opt.Name, token, "<@!", "<@")
	case discordgo.ApplicationCommandOptionRole:
		return parseMention(opt.Name, token, "<@&")
	case discordgo.ApplicationCommandOptionMentionable:
		return parseMention(opt.Name, token, "<@&", "<@!", "<@", "<#")
	}
	return token, nil
}

// parseMention accepts a raw snowflake or one of the given mention forms
func parseMention(name, token string, prefixes ...string) (int64, error) {
	raw := token
	for _, prefix := range prefixes {
		if strings.HasPrefix(token, prefix) && strings.HasSuffix(token, ">") {
			raw = token[len(prefix) : len(token)-1]
			break
		}
	}

	id, err := common.ParseID(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("**%s** must be a mention or an ID", name)
	}
	return id, nil
}

func parseBool(token string) (bool, bool) {
	switch strings.ToLower(token) {
	case "true", "yes", "on", "enable", "enabled", "1":
		return true, true
	case "false", "no", "off", "disable", "disabled", "0":
		return false, true
	}
	return false, false
}

func usageError(inv *common.Invocation, cmd *common.Command, problem string) error {
	return common.NewUserError("Invalid Arguments", fmt.Sprintf("%s\nUsage: `%s`", problem, cmd.Usage(inv.Prefix)))
}
