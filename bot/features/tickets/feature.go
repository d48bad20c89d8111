package tickets

import (
	"context"

	"logiq/bot/common"
	"logiq/models"

	"github.com/bwmarrin/discordgo"
)

// maxSubjectLength bounds the ticket subject
const maxSubjectLength = 200

// TicketStore is the slice of the persistence gateway tickets use
type TicketStore interface {
	CreateTicket(ctx context.Context, guildID, userID, channelID int64, subject string) (*models.Ticket, error)
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	CloseTicket(ctx context.Context, id string) (bool, error)
}

type Feature struct {
	tickets TicketStore
}

func New(tickets TicketStore) *Feature {
	return &Feature{tickets: tickets}
}

func (f *Feature) Name() string {
	return common.ModuleTickets
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "ticket",
			Description: "Open or close a support ticket",
			Options: []*discordgo.ApplicationCommandOption{
				common.SubCommand("open", "Open a support ticket",
					common.StringOption("subject", "What do you need help with?", true)),
				common.SubCommand("close", "Close a support ticket",
					common.StringOption("id", "Ticket ID", true)),
			},
			Run: f.handleTicket,
		},
	}
}
