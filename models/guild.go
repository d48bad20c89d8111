package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// VerificationType selects how new members verify themselves
type VerificationType string

const (
	VerificationButton   VerificationType = "button"
	VerificationCaptcha  VerificationType = "captcha"
	VerificationReaction VerificationType = "reaction"
)

// DefaultVerificationType is used when a guild never configured one
const DefaultVerificationType = VerificationButton

// Valid reports whether v is a known verification type
func (v VerificationType) Valid() bool {
	switch v {
	case VerificationButton, VerificationCaptcha, VerificationReaction:
		return true
	}
	return false
}

// MaxPrefixLength bounds the text command prefix
const MaxPrefixLength = 5

var moduleNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// ValidModuleName reports whether name can be stored as a module flag key
func ValidModuleName(name string) bool {
	return moduleNamePattern.MatchString(name)
}

// Guild represents a guild's configuration record
type Guild struct {
	GuildID          int64            `db:"guild_id" bson:"guild_id" json:"guild_id"`
	Prefix           string           `db:"prefix" bson:"prefix" json:"prefix"`
	Modules          map[string]bool  `db:"modules" bson:"modules" json:"modules"`
	LogChannel       *int64           `db:"log_channel" bson:"log_channel" json:"log_channel"`
	WelcomeChannel   *int64           `db:"welcome_channel" bson:"welcome_channel" json:"welcome_channel"`
	VerifiedRole     *int64           `db:"verified_role" bson:"verified_role" json:"verified_role"`
	VerificationType VerificationType `db:"verification_type" bson:"verification_type" json:"verification_type"`
	CreatedAt        time.Time        `db:"created_at" bson:"created_at" json:"created_at"`
}

// HasLogChannel checks if a log channel is configured
func (g *Guild) HasLogChannel() bool {
	return g.LogChannel != nil && *g.LogChannel > 0
}

// HasWelcomeChannel checks if a welcome channel is configured
func (g *Guild) HasWelcomeChannel() bool {
	return g.WelcomeChannel != nil && *g.WelcomeChannel > 0
}

// ModuleEnabled reports whether module is enabled for this guild; modules without a flag are enabled
func (g *Guild) ModuleEnabled(module string) bool {
	enabled, ok := g.Modules[module]
	return !ok || enabled
}

// GuildDefaults are the values a new guild record starts with
type GuildDefaults struct {
	Prefix string
}

// NewGuild builds a record from defaults merged with caller-supplied overrides
func NewGuild(guildID int64, defaults GuildDefaults, overrides GuildUpdate, now time.Time) *Guild {
	guild := &Guild{
		GuildID:          guildID,
		Prefix:           defaults.Prefix,
		Modules:          map[string]bool{},
		VerificationType: DefaultVerificationType,
		CreatedAt:        now.UTC().Truncate(time.Microsecond),
	}
	overrides.ApplyTo(guild)
	return guild
}

// GuildUpdate enumerates the guild fields that may be changed.
// ModuleFlags is merged into the stored flags rather than replacing them.
type GuildUpdate struct {
	Prefix           Patch[string]
	ModuleFlags      map[string]bool
	LogChannel       Patch[*int64]
	WelcomeChannel   Patch[*int64]
	VerifiedRole     Patch[*int64]
	VerificationType Patch[VerificationType]
}

// IsEmpty reports whether the update touches no field
func (u GuildUpdate) IsEmpty() bool {
	return !u.Prefix.IsSet() &&
		len(u.ModuleFlags) == 0 &&
		!u.LogChannel.IsSet() &&
		!u.WelcomeChannel.IsSet() &&
		!u.VerifiedRole.IsSet() &&
		!u.VerificationType.IsSet()
}

// Validate rejects values a guild record may never hold
func (u GuildUpdate) Validate() error {
	if prefix, ok := u.Prefix.Get(); ok {
		if strings.TrimSpace(prefix) == "" {
			return errors.New("prefix cannot be empty")
		}
		if len(prefix) > MaxPrefixLength || strings.ContainsAny(prefix, " \t\n") {
			return fmt.Errorf("prefix must be at most %d characters without spaces", MaxPrefixLength)
		}
	}
	for name := range u.ModuleFlags {
		if !ValidModuleName(name) {
			return fmt.Errorf("invalid module name %q", name)
		}
	}
	if vt, ok := u.VerificationType.Get(); ok && !vt.Valid() {
		return fmt.Errorf("unknown verification type %q", vt)
	}
	return nil
}

// ApplyTo writes the set fields onto guild
func (u GuildUpdate) ApplyTo(guild *Guild) {
	if prefix, ok := u.Prefix.Get(); ok {
		guild.Prefix = prefix
	}
	if len(u.ModuleFlags) > 0 {
		if guild.Modules == nil {
			guild.Modules = make(map[string]bool, len(u.ModuleFlags))
		}
		for name, enabled := range u.ModuleFlags {
			guild.Modules[name] = enabled
		}
	}
	if ch, ok := u.LogChannel.Get(); ok {
		guild.LogChannel = ch
	}
	if ch, ok := u.WelcomeChannel.Get(); ok {
		guild.WelcomeChannel = ch
	}
	if role, ok := u.VerifiedRole.Get(); ok {
		guild.VerifiedRole = role
	}
	if vt, ok := u.VerificationType.Get(); ok {
		guild.VerificationType = vt
	}
}
