package models

import (
	"errors"
	"fmt"
	"time"
)

// UserKey identifies a user record: one per (user, guild) pair
type UserKey struct {
	UserID  int64
	GuildID int64
}

// String renders the key for logs and error messages
func (k UserKey) String() string {
	return fmt.Sprintf("user %d in guild %d", k.UserID, k.GuildID)
}

// User represents a member's per-guild record
type User struct {
	UserID    int64           `db:"user_id" bson:"user_id" json:"user_id"`
	GuildID   int64           `db:"guild_id" bson:"guild_id" json:"guild_id"`
	XP        int64           `db:"xp" bson:"xp" json:"xp"`
	Level     int             `db:"level" bson:"level" json:"level"`
	Balance   int64           `db:"balance" bson:"balance" json:"balance"`
	Inventory []InventoryItem `db:"inventory" bson:"inventory" json:"inventory"`
	Warnings  []Warning       `db:"warnings" bson:"warnings" json:"warnings"`
	CreatedAt time.Time       `db:"created_at" bson:"created_at" json:"created_at"`
}

// Key returns the record's identity
func (u *User) Key() UserKey {
	return UserKey{UserID: u.UserID, GuildID: u.GuildID}
}

// InventoryItem is one entry of a user's inventory
type InventoryItem struct {
	ItemID     string    `bson:"item_id" json:"item_id"`
	Name       string    `bson:"name" json:"name"`
	Price      int64     `bson:"price" json:"price"`
	AcquiredAt time.Time `bson:"acquired_at" json:"acquired_at"`
}

// Warning is one moderation warning issued to a user
type Warning struct {
	ID          string    `bson:"id" json:"id"`
	ModeratorID int64     `bson:"moderator_id" json:"moderator_id"`
	Reason      string    `bson:"reason" json:"reason"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// UserDefaults are the values a new user record starts with
type UserDefaults struct {
	Balance int64
}

// NewUser builds a record from defaults merged with caller-supplied overrides
func NewUser(key UserKey, defaults UserDefaults, overrides UserUpdate, now time.Time) *User {
	user := &User{
		UserID:    key.UserID,
		GuildID:   key.GuildID,
		Balance:   defaults.Balance,
		Inventory: []InventoryItem{},
		Warnings:  []Warning{},
		CreatedAt: now.UTC().Truncate(time.Microsecond),
	}
	overrides.ApplyTo(user)
	return user
}

// UserCounter names a numeric user field that supports atomic increments
type UserCounter string

const (
	CounterXP      UserCounter = "xp"
	CounterLevel   UserCounter = "level"
	CounterBalance UserCounter = "balance"
)

// Valid reports whether c is one of the incrementable fields
func (c UserCounter) Valid() bool {
	switch c {
	case CounterXP, CounterLevel, CounterBalance:
		return true
	}
	return false
}

// UserUpdate enumerates the user fields that may be replaced directly
type UserUpdate struct {
	XP      Patch[int64]
	Level   Patch[int]
	Balance Patch[int64]
}

// IsEmpty reports whether the update touches no field
func (u UserUpdate) IsEmpty() bool {
	return !u.XP.IsSet() && !u.Level.IsSet() && !u.Balance.IsSet()
}

// Validate rejects values a user record may never hold
func (u UserUpdate) Validate() error {
	if xp, ok := u.XP.Get(); ok && xp < 0 {
		return errors.New("xp cannot be negative")
	}
	if level, ok := u.Level.Get(); ok && level < 0 {
		return errors.New("level cannot be negative")
	}
	if balance, ok := u.Balance.Get(); ok && balance < 0 {
		return errors.New("balance cannot be negative")
	}
	return nil
}

// ApplyTo writes the set fields onto user
func (u UserUpdate) ApplyTo(user *User) {
	if xp, ok := u.XP.Get(); ok {
		user.XP = xp
	}
	if level, ok := u.Level.Get(); ok {
		user.Level = level
	}
	if balance, ok := u.Balance.Get(); ok {
		user.Balance = balance
	}
}
