package tickets

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"logiq/bot/common"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleTicket(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	switch inv.Subcommand {
	case "open":
		return f.handleOpen(ctx, inv)
	case "close":
		return f.handleClose(ctx, inv)
	}
	return nil, common.NewUserError("Invalid Subcommand", "Use `ticket open <subject>` or `ticket close <id>`")
}

func (f *Feature) handleOpen(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	subject, _ := inv.String("subject")
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, common.NewUserError("Invalid Subject", "Please describe what you need help with")
	}
	if utf8.RuneCountInString(subject) > maxSubjectLength {
		return nil, common.NewUserError("Invalid Subject", fmt.Sprintf("Subject must be at most %d characters", maxSubjectLength))
	}

	// The store enforces the open ticket cap atomically
	ticket, err := f.tickets.CreateTicket(ctx, inv.GuildID, inv.UserID, inv.ChannelID, subject)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild_id":  inv.GuildID,
		"user_id":   inv.UserID,
		"ticket_id": ticket.ID,
	}).Info("Ticket opened")

	embed := common.NewEmbed("🎫 Ticket Opened", common.ColorSuccess,
		common.Field("Subject", ticket.Subject, false),
		common.Field("ID", fmt.Sprintf("`%s`", ticket.ID), true),
		common.Field("Opened By", common.UserMention(inv.UserID), true),
	)
	return common.Reply(embed), nil
}

func (f *Feature) handleClose(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	id, _ := inv.String("id")
	id = strings.Trim(strings.TrimSpace(id), "`")

	ticket, err := f.tickets.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.GuildID != inv.GuildID {
		return nil, common.NewUserError("Not Found", fmt.Sprintf("Ticket `%s` not found", id))
	}
	if ticket.UserID != inv.UserID && !inv.IsAdmin {
		return nil, common.NewUserError("Permission Denied", "Only the ticket owner or an administrator can close it")
	}
	if !ticket.IsOpen() {
		return nil, common.NewUserError("Already Closed", fmt.Sprintf("Ticket `%s` is already closed", id))
	}

	closed, err := f.tickets.CloseTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, common.NewUserError("Already Closed", fmt.Sprintf("Ticket `%s` is already closed", id))
	}

	return common.Reply(common.SuccessEmbed("Ticket Closed", fmt.Sprintf("Ticket `%s` has been closed", id))), nil
}
