package slack

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

// BuildFailureStreakMessage creates Block Kit blocks for a consecutive
// sandbox-failure alert.
func BuildFailureStreakMessage(streak int64, dashboardURL string) []goslack.Block {
	text := fmt.Sprintf(
		":warning: *Sandbox failure streak at %d* — the numeric tool has failed %d consecutive times.",
		streak, streak,
	)

	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}

	if dashboardURL != "" {
		btn := goslack.NewButtonBlockElement("", "", goslack.NewTextBlockObject(goslack.PlainTextType, "View Dashboard", false, false))
		btn.URL = dashboardURL
		blocks = append(blocks, goslack.NewActionBlock("", btn))
	}

	return blocks
}
