package common

import "time"

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
)

// Module names
const (
	ModuleAdmin      = "admin"
	ModuleEconomy    = "economy"
	ModuleLeveling   = "leveling"
	ModuleModeration = "moderation"
	ModuleTickets    = "tickets"
	ModuleReminders  = "reminders"
	ModuleStats      = "stats"
)

const (
	// CommandTimeout bounds one command invocation
	CommandTimeout = 10 * time.Second

	// ConfirmationLifetime is how long transient confirmations stay visible
	ConfirmationLifetime = 5 * time.Second

	NotSet = "Not set"
)
