package economy

import (
	"logiq/bot/common"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
)

// inventoryPreview caps the items listed by the inventory command
const inventoryPreview = 20

type Feature struct {
	economy service.Economy
}

func New(economy service.Economy) *Feature {
	return &Feature{economy: economy}
}

func (f *Feature) Name() string {
	return common.ModuleEconomy
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "balance",
			Description: "Check a balance",
			Options:     []*discordgo.ApplicationCommandOption{common.UserOption("user", "Member to check", false)},
			Run:         f.handleBalance,
		},
		{
			Name:        "pay",
			Description: "Send coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				common.UserOption("user", "Recipient", true),
				common.IntOption("amount", "Amount to send", true),
			},
			Run: f.handlePay,
		},
		{
			Name:        "shop",
			Description: "Browse the server shop",
			Run:         f.handleShop,
		},
		{
			Name:        "buy",
			Description: "Buy an item from the shop",
			Options:     []*discordgo.ApplicationCommandOption{common.StringOption("item_id", "ID of the item", true)},
			Run:         f.handleBuy,
		},
		{
			Name:        "inventory",
			Description: "View your inventory",
			Run:         f.handleInventory,
		},
		{
			Name:        "additem",
			Description: "Add an item to the shop",
			Options: []*discordgo.ApplicationCommandOption{
				common.StringOption("name", "Item name", true),
				common.IntOption("price", "Item price", true),
				common.StringOption("description", "Item description", false),
			},
			AdminOnly: true,
			Run:       f.handleAddItem,
		},
	}
}
