package common

import (
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Response is the single formatted reply to an invocation
type Response struct {
	Embed     *discordgo.MessageEmbed
	Ephemeral bool
	// DeleteAfter removes the reply after the delay when non-zero
	DeleteAfter time.Duration
	// Files are uploaded with the reply; the embed may reference them as attachment://name
	Files []*discordgo.File
}

// Reply wraps an embed in a public response
func Reply(embed *discordgo.MessageEmbed) *Response {
	return &Response{Embed: embed}
}

// Private wraps an embed in an ephemeral response
func Private(embed *discordgo.MessageEmbed) *Response {
	return &Response{Embed: embed, Ephemeral: true}
}

// DeferResponse sends a deferred response to give more time for processing
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags,
		},
	})
}

// RespondWithEmbed sends a response as the interaction reply
func RespondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, resp *Response) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{resp.Embed},
		Files:  resp.Files,
	}

	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// EditDeferred fills in a deferred interaction reply
func EditDeferred(s *discordgo.Session, i *discordgo.InteractionCreate, resp *Response) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{resp.Embed},
		Files:  resp.Files,
	})
	return err
}

// ScheduleInteractionDelete removes the interaction reply after resp.DeleteAfter
func ScheduleInteractionDelete(s *discordgo.Session, i *discordgo.InteractionCreate, resp *Response) {
	if resp.DeleteAfter <= 0 {
		return
	}
	time.AfterFunc(resp.DeleteAfter, func() {
		if err := s.InteractionResponseDelete(i.Interaction); err != nil {
			log.WithError(err).Debug("Failed to delete interaction response")
		}
	})
}

// SendToChannel posts a response as a regular channel message
func SendToChannel(s *discordgo.Session, channelID string, resp *Response) (*discordgo.Message, error) {
	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{resp.Embed},
		Files:  resp.Files,
	})
	if err != nil {
		return nil, err
	}

	if resp.DeleteAfter > 0 {
		time.AfterFunc(resp.DeleteAfter, func() {
			if err := s.ChannelMessageDelete(channelID, msg.ID); err != nil {
				log.WithError(err).Debug("Failed to delete message")
			}
		})
	}
	return msg, nil
}
