package common

import "github.com/bwmarrin/discordgo"

// NewEmbed creates an embed with the given fields
func NewEmbed(title string, color int, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:  title,
		Color:  color,
		Fields: fields,
	}
}

// Field builds an embed field
func Field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "✅ " + title, Description: description, Color: ColorSuccess}
}

func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "❌ " + title, Description: description, Color: ColorDanger}
}

func InfoEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "ℹ️ " + title, Description: description, Color: ColorInfo}
}

func WarningEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "⚠️ " + title, Description: description, Color: ColorWarning}
}
