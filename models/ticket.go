package models

import (
	"fmt"
	"time"
)

// TicketStatus represents the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket represents a support ticket opened by a member
type Ticket struct {
	ID        string       `db:"id" bson:"_id" json:"id"`
	GuildID   int64        `db:"guild_id" bson:"guild_id" json:"guild_id"`
	UserID    int64        `db:"user_id" bson:"user_id" json:"user_id"`
	ChannelID int64        `db:"channel_id" bson:"channel_id" json:"channel_id"`
	Subject   string       `db:"subject" bson:"subject" json:"subject"`
	Status    TicketStatus `db:"status" bson:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" bson:"created_at" json:"created_at"`
	ClosedAt  *time.Time   `db:"closed_at" bson:"closed_at" json:"closed_at"`
}

// IsOpen reports whether the ticket still awaits handling
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}

// TicketUpdate enumerates the ticket fields that may be changed
type TicketUpdate struct {
	Status   Patch[TicketStatus]
	ClosedAt Patch[*time.Time]
}

// IsEmpty reports whether the update touches no field
func (u TicketUpdate) IsEmpty() bool {
	return !u.Status.IsSet() && !u.ClosedAt.IsSet()
}

// Validate rejects unknown ticket states
func (u TicketUpdate) Validate() error {
	if status, ok := u.Status.Get(); ok && status != TicketStatusOpen && status != TicketStatusClosed {
		return fmt.Errorf("unknown ticket status %q", status)
	}
	return nil
}
