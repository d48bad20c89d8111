package models

import "time"

// CommandCount is how often one command ran in a window
type CommandCount struct {
	Command string
	Uses    int
}

// ActivitySummary aggregates a guild's recorded analytics over a window
type ActivitySummary struct {
	GuildID        int64
	From           time.Time
	To             time.Time
	Commands       int
	FailedCommands int
	Warnings       int
	LevelUps       int
	MembersJoined  int
	CoinsMoved     int64
	TopCommands    []CommandCount
	// Truncated is set when the window held more events than one query returns
	Truncated bool
}

// FailureRate is the share of failed commands as a percentage 0-100
func (s *ActivitySummary) FailureRate() float64 {
	if s.Commands == 0 {
		return 0
	}
	return float64(s.FailedCommands) / float64(s.Commands) * 100
}
