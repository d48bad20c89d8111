package common

import "logiq/models"

// Surface identifies how a command was invoked
type Surface string

const (
	SurfaceSlash  Surface = "slash"
	SurfacePrefix Surface = "prefix"
)

// Invocation is an authenticated command call with typed arguments
type Invocation struct {
	Surface    Surface
	Command    string
	Subcommand string
	GuildID    int64
	ChannelID  int64
	UserID     int64
	IsAdmin    bool
	// Prefix is the prefix used on the prefix surface, for usage hints
	Prefix string

	args map[string]any
}

// NewInvocation creates an invocation for command with no arguments
func NewInvocation(surface Surface, command string, guildID, channelID, userID int64) *Invocation {
	return &Invocation{
		Surface:   surface,
		Command:   command,
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		args:      map[string]any{},
	}
}

// WithArg sets an argument. Values are int64, string, bool, or int64 IDs for mentions.
func (inv *Invocation) WithArg(name string, value any) *Invocation {
	if inv.args == nil {
		inv.args = map[string]any{}
	}
	inv.args[name] = value
	return inv
}

// Int returns an integer argument
func (inv *Invocation) Int(name string) (int64, bool) {
	v, ok := inv.args[name].(int64)
	return v, ok
}

// String returns a string argument
func (inv *Invocation) String(name string) (string, bool) {
	v, ok := inv.args[name].(string)
	return v, ok
}

// Bool returns a boolean argument
func (inv *Invocation) Bool(name string) (bool, bool) {
	v, ok := inv.args[name].(bool)
	return v, ok
}

// ID returns a channel, user or role argument
func (inv *Invocation) ID(name string) (int64, bool) {
	return inv.Int(name)
}

// UserOr returns the user argument, or the caller when absent
func (inv *Invocation) UserOr(name string) int64 {
	if id, ok := inv.ID(name); ok {
		return id
	}
	return inv.UserID
}

// Key identifies the caller's user record
func (inv *Invocation) Key() models.UserKey {
	return models.UserKey{UserID: inv.UserID, GuildID: inv.GuildID}
}

// KeyFor identifies another member's record in the invoking guild
func (inv *Invocation) KeyFor(userID int64) models.UserKey {
	return models.UserKey{UserID: userID, GuildID: inv.GuildID}
}
