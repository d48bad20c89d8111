package testutil

import (
	"time"

	"logiq/models"
)

// DefaultTestBalance is the starting balance of factory-built users
const DefaultTestBalance int64 = 1000

// CreateTestUser creates a user record with default values
func CreateTestUser(userID, guildID int64) *models.User {
	return models.NewUser(
		models.UserKey{UserID: userID, GuildID: guildID},
		models.UserDefaults{Balance: DefaultTestBalance},
		models.UserUpdate{},
		time.Now(),
	)
}

// CreateTestUserWithBalance creates a user record with a specific balance
func CreateTestUserWithBalance(userID, guildID, balance int64) *models.User {
	user := CreateTestUser(userID, guildID)
	user.Balance = balance
	return user
}

// CreateTestUserWithXP creates a user record with a specific xp total and its derived level
func CreateTestUserWithXP(userID, guildID, xp int64) *models.User {
	user := CreateTestUser(userID, guildID)
	user.XP = xp
	user.Level = models.LevelForXP(xp)
	return user
}

// CreateTestGuild creates a guild record with the "!" prefix
func CreateTestGuild(guildID int64) *models.Guild {
	return models.NewGuild(guildID, models.GuildDefaults{Prefix: "!"}, models.GuildUpdate{}, time.Now())
}

// CreateTestTicket creates an open ticket
func CreateTestTicket(guildID, userID int64, subject string) *models.Ticket {
	return &models.Ticket{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: 555,
		Subject:   subject,
		Status:    models.TicketStatusOpen,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestReminder creates a pending reminder due at remindAt
func CreateTestReminder(guildID, userID int64, remindAt time.Time) *models.Reminder {
	return &models.Reminder{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: 555,
		Message:   "stand up",
		RemindAt:  remindAt.UTC().Truncate(time.Microsecond),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestShopItem creates a shop item with the given price
func CreateTestShopItem(guildID int64, name string, price int64) *models.ShopItem {
	return &models.ShopItem{
		GuildID:     guildID,
		Name:        name,
		Description: name + " description",
		Price:       price,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestAnalyticsEvent creates an event of eventType at timestamp
func CreateTestAnalyticsEvent(guildID int64, eventType models.AnalyticsEventType, timestamp time.Time) *models.AnalyticsEvent {
	userID := int64(42)
	return &models.AnalyticsEvent{
		GuildID:   guildID,
		UserID:    &userID,
		Type:      eventType,
		Data:      map[string]any{"source": "test"},
		Timestamp: timestamp.UTC().Truncate(time.Microsecond),
	}
}
