package stats

import (
	"context"
	"fmt"

	"logiq/bot/common"
	"logiq/service"
)

func (f *Feature) handleServerStats(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	days := int64(defaultDays)
	if requested, ok := inv.Int("days"); ok {
		days = requested
	}
	if days < 1 || days > service.MaxActivityDays {
		return nil, common.NewUserError("Invalid Days", fmt.Sprintf("Days must be between 1 and %d", service.MaxActivityDays))
	}

	summary, err := f.stats.GuildActivity(ctx, inv.GuildID, int(days))
	if err != nil {
		return nil, err
	}
	return common.Reply(BuildActivityEmbed(summary, int(days))), nil
}
