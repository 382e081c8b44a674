package slack

import (
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFailureStreakMessage_IncludesCount(t *testing.T) {
	blocks := BuildFailureStreakMessage(3, "https://dash.example.com")

	require.GreaterOrEqual(t, len(blocks), 1)
	section, ok := blocks[0].(*goslack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "3 consecutive")
}

func TestBuildFailureStreakMessage_NoDashboardButtonWhenURLEmpty(t *testing.T) {
	blocks := BuildFailureStreakMessage(5, "")
	require.Len(t, blocks, 1)
}

func TestService_ObserveFailureStreakNilSafe(t *testing.T) {
	var s *Service
	assert.NotPanics(t, func() { s.ObserveFailureStreak(4) })
}
