package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_ComputesOffsetsAndDurations(t *testing.T) {
	events := []Event{
		{TaskID: "retriever", Message: "a", TimestampMs: 1000},
		{TaskID: "analyst", Message: "b", TimestampMs: 1200},
		{TaskID: "critic", Message: "c", TimestampMs: 1500},
	}

	steps := Timeline(events)
	require.Len(t, steps, 3)
	assert.Equal(t, int64(0), steps[0].OffsetMs)
	assert.Equal(t, int64(200), steps[0].DurationMs)
	assert.Equal(t, int64(200), steps[1].OffsetMs)
	assert.Equal(t, int64(300), steps[1].DurationMs)
	assert.Equal(t, int64(500), steps[2].OffsetMs)
	assert.Equal(t, int64(0), steps[2].DurationMs)
}

func TestTimeline_EmptyInput(t *testing.T) {
	assert.Nil(t, Timeline(nil))
}

func TestAggregate_GroupsByTaskInFirstSeenOrder(t *testing.T) {
	steps := []Step{
		{TaskID: "retriever", DurationMs: 100},
		{TaskID: "analyst", DurationMs: 200},
		{TaskID: "retriever", DurationMs: 50},
	}
	agg := Aggregate(steps)
	require.Len(t, agg, 2)
	assert.Equal(t, "retriever", agg[0].TaskID)
	assert.Equal(t, 2, agg[0].StepCount)
	assert.Equal(t, int64(150), agg[0].TotalDuration)
	assert.Equal(t, "analyst", agg[1].TaskID)
	assert.Equal(t, 1, agg[1].StepCount)
}
