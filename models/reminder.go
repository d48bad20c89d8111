package models

import "time"

// Reminder is a message a member asked to be reminded of
type Reminder struct {
	ID        string    `db:"id" bson:"_id" json:"id"`
	GuildID   int64     `db:"guild_id" bson:"guild_id" json:"guild_id"`
	UserID    int64     `db:"user_id" bson:"user_id" json:"user_id"`
	ChannelID int64     `db:"channel_id" bson:"channel_id" json:"channel_id"`
	Message   string    `db:"message" bson:"message" json:"message"`
	RemindAt  time.Time `db:"remind_at" bson:"remind_at" json:"remind_at"`
	Completed bool      `db:"completed" bson:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// IsDue reports whether the reminder should fire at t
func (r *Reminder) IsDue(t time.Time) bool {
	return !r.Completed && !r.RemindAt.After(t)
}
