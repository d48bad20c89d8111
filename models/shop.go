package models

import "time"

// ShopItem is an item members can buy with their balance
type ShopItem struct {
	ID          string    `db:"id" bson:"_id" json:"id"`
	GuildID     int64     `db:"guild_id" bson:"guild_id" json:"guild_id"`
	Name        string    `db:"name" bson:"name" json:"name"`
	Description string    `db:"description" bson:"description" json:"description"`
	Price       int64     `db:"price" bson:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// ToInventoryItem converts a purchased shop item into an inventory entry
func (s *ShopItem) ToInventoryItem(acquiredAt time.Time) InventoryItem {
	return InventoryItem{
		ItemID:     s.ID,
		Name:       s.Name,
		Price:      s.Price,
		AcquiredAt: acquiredAt.UTC().Truncate(time.Microsecond),
	}
}
