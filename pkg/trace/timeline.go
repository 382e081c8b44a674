package trace

// Step is one event positioned relative to the start of the trace, with
// its duration inferred as the gap to the next event (0 for the last
// step — its end is the session's completion, not another event).
type Step struct {
	TaskID     string `json:"task_id"`
	Message    string `json:"message"`
	OffsetMs   int64  `json:"offset_ms"`
	DurationMs int64  `json:"duration_ms"`
}

// TaskAggregate summarizes one task's contribution across every step it
// produced.
type TaskAggregate struct {
	TaskID        string `json:"task_id"`
	StepCount     int    `json:"step_count"`
	TotalDuration int64  `json:"total_duration_ms"`
}

// Timeline converts a flat event list into per-step offsets and
// durations. Empty input yields an empty timeline.
func Timeline(events []Event) []Step {
	if len(events) == 0 {
		return nil
	}
	start := events[0].TimestampMs
	steps := make([]Step, len(events))
	for i, ev := range events {
		step := Step{
			TaskID:   ev.TaskID,
			Message:  ev.Message,
			OffsetMs: ev.TimestampMs - start,
		}
		if i+1 < len(events) {
			step.DurationMs = events[i+1].TimestampMs - ev.TimestampMs
		}
		steps[i] = step
	}
	return steps
}

// Aggregate groups the timeline by task, summing step count and total
// duration contributed by each task in first-seen order.
func Aggregate(steps []Step) []TaskAggregate {
	order := make([]string, 0)
	byTask := make(map[string]*TaskAggregate)
	for _, s := range steps {
		agg, ok := byTask[s.TaskID]
		if !ok {
			agg = &TaskAggregate{TaskID: s.TaskID}
			byTask[s.TaskID] = agg
			order = append(order, s.TaskID)
		}
		agg.StepCount++
		agg.TotalDuration += s.DurationMs
	}
	out := make([]TaskAggregate, 0, len(order))
	for _, id := range order {
		out = append(out, *byTask[id])
	}
	return out
}
