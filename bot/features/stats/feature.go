package stats

import (
	"logiq/bot/common"
	"logiq/service"

	"github.com/bwmarrin/discordgo"
)

// defaultDays is the summary window when none is given
const defaultDays = 7

// Feature represents the server activity stats feature
type Feature struct {
	stats service.Stats
}

// NewFeature creates a new stats feature instance
func NewFeature(stats service.Stats) *Feature {
	return &Feature{stats: stats}
}

func (f *Feature) Name() string {
	return common.ModuleStats
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "serverstats",
			Description: "View recent server activity",
			Options:     []*discordgo.ApplicationCommandOption{common.IntOption("days", "Days to summarize (default 7)", false)},
			Run:         f.handleServerStats,
		},
	}
}
