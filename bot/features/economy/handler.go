package economy

import (
	"context"
	"fmt"
	"strings"

	"logiq/bot/common"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	target := inv.UserOr("user")

	user, err := f.economy.Balance(ctx, inv.KeyFor(target))
	if err != nil {
		return nil, err
	}

	embed := common.NewEmbed("💰 Balance", common.ColorPrimary,
		common.Field("Member", common.UserMention(target), true),
		common.Field("Balance", fmt.Sprintf("**%s** coins", common.FormatBalance(user.Balance)), true),
	)
	return common.Reply(embed), nil
}

func (f *Feature) handlePay(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	recipient, ok := inv.ID("user")
	if !ok {
		return nil, common.NewUserError("Invalid Recipient", "Please mention the member to pay")
	}
	amount, _ := inv.Int("amount")

	if err := f.economy.Pay(ctx, inv.Key(), inv.KeyFor(recipient), amount); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild_id": inv.GuildID,
		"from":     inv.UserID,
		"to":       recipient,
		"amount":   amount,
	}).Info("Coins transferred")

	return common.Reply(common.SuccessEmbed("Payment Sent",
		fmt.Sprintf("Sent **%s** coins to %s", common.FormatBalance(amount), common.UserMention(recipient)))), nil
}

func (f *Feature) handleShop(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	items, err := f.economy.Shop(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return common.Reply(common.InfoEmbed("Shop", "The shop is empty")), nil
	}

	embed := common.NewEmbed("🛒 Shop", common.ColorPrimary)
	for _, item := range items {
		value := fmt.Sprintf("%s coins\nID: `%s`", common.FormatBalance(item.Price), item.ID)
		if item.Description != "" {
			value = item.Description + "\n" + value
		}
		embed.Fields = append(embed.Fields, common.Field(item.Name, value, false))
	}
	return common.Reply(embed), nil
}

func (f *Feature) handleBuy(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	itemID, _ := inv.String("item_id")
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, common.NewUserError("Invalid Item", "Please provide an item ID from the shop")
	}

	item, err := f.economy.Buy(ctx, inv.Key(), itemID)
	if err != nil {
		return nil, err
	}

	return common.Reply(common.SuccessEmbed("Purchase Complete",
		fmt.Sprintf("You bought **%s** for **%s** coins", item.Name, common.FormatBalance(item.Price)))), nil
}

func (f *Feature) handleInventory(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	user, err := f.economy.Balance(ctx, inv.Key())
	if err != nil {
		return nil, err
	}
	if len(user.Inventory) == 0 {
		return common.Private(common.InfoEmbed("Inventory", "Your inventory is empty")), nil
	}

	var lines strings.Builder
	for i, item := range user.Inventory {
		if i == inventoryPreview {
			fmt.Fprintf(&lines, "...and %d more", len(user.Inventory)-inventoryPreview)
			break
		}
		fmt.Fprintf(&lines, "• **%s** (%s)\n", item.Name, common.FormatDiscordTimestamp(item.AcquiredAt, "d"))
	}

	embed := common.NewEmbed("🎒 Inventory", common.ColorPrimary)
	embed.Description = lines.String()
	return common.Private(embed), nil
}

func (f *Feature) handleAddItem(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	name, _ := inv.String("name")
	name = strings.TrimSpace(name)
	price, _ := inv.Int("price")
	description, _ := inv.String("description")

	if name == "" {
		return nil, common.NewUserError("Invalid Item", "Item name cannot be empty")
	}
	if price < 0 {
		return nil, common.NewUserError("Invalid Price", "Price cannot be negative")
	}

	item, err := f.economy.AddShopItem(ctx, inv.GuildID, name, strings.TrimSpace(description), price)
	if err != nil {
		return nil, err
	}

	return common.Reply(common.SuccessEmbed("Item Added",
		fmt.Sprintf("**%s** is now available for **%s** coins\nID: `%s`", item.Name, common.FormatBalance(item.Price), item.ID))), nil
}
