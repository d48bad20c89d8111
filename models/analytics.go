package models

import "time"

// AnalyticsEventType names a recorded analytics event
type AnalyticsEventType string

const (
	EventCommandUsed    AnalyticsEventType = "command_used"
	EventWarningIssued  AnalyticsEventType = "warning_issued"
	EventLevelUp        AnalyticsEventType = "level_up"
	EventBalanceChanged AnalyticsEventType = "balance_changed"
	EventMemberJoined   AnalyticsEventType = "member_joined"
)

// AnalyticsEvent is one recorded activity event
type AnalyticsEvent struct {
	ID        string             `db:"id" bson:"_id,omitempty" json:"id"`
	GuildID   int64              `db:"guild_id" bson:"guild_id" json:"guild_id"`
	UserID    *int64             `db:"user_id" bson:"user_id,omitempty" json:"user_id,omitempty"`
	Type      AnalyticsEventType `db:"type" bson:"type" json:"type"`
	Data      map[string]any     `db:"data" bson:"data" json:"data"`
	Timestamp time.Time          `db:"timestamp" bson:"timestamp" json:"timestamp"`
}

// AnalyticsFilter narrows an analytics query. Zero values mean "no bound".
type AnalyticsFilter struct {
	GuildID int64
	Type    AnalyticsEventType
	From    time.Time
	To      time.Time
}

// MaxAnalyticsResults caps one analytics query
const MaxAnalyticsResults = 1000
