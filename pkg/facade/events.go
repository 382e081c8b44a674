package facade

import "sync"

// EventKind enumerates the terminal/progress markers carried on a
// session's stream.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventCompleted EventKind = "completed"
	EventError     EventKind = "error"
)

// Event is one item on a session's broadcast stream.
type Event struct {
	Kind            EventKind `json:"kind"`
	Message         string    `json:"message,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	TraceAvailable  bool      `json:"trace_available,omitempty"`
	RequiresManual  bool      `json:"requires_manual,omitempty"`
}

func startedEvent() Event {
	return Event{Kind: EventStarted, Message: "session started"}
}

func completedEvent(summary string, traceAvailable, requiresManual bool) Event {
	return Event{
		Kind:           EventCompleted,
		Summary:        summary,
		TraceAvailable: traceAvailable,
		RequiresManual: requiresManual,
	}
}

func errorEvent(err error) Event {
	return Event{Kind: EventError, Message: err.Error()}
}

// broadcaster fans one session's events out to any number of live
// subscribers (buffer 32 each, matching the Façade's channel sizing) and
// remembers the last terminal event so a subscriber arriving after the
// session has already finished still gets exactly one item instead of
// hanging forever.
type broadcaster struct {
	mu       sync.Mutex
	subs     []chan Event
	terminal *Event
}

func newBroadcaster() *broadcaster {
	return &broadcaster{}
}

// subscribe returns a channel that a live broadcaster will push future
// events to. If the broadcaster has already recorded a terminal event,
// the channel instead carries exactly that one event and is then closed
// — the "replay one last event" requirement for late subscribers.
func (b *broadcaster) subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 32)
	if b.terminal != nil {
		ch <- *b.terminal
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// publish fans out a non-terminal event to all current subscribers.
func (b *broadcaster) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// finish records the terminal event, fans it out to whoever is still
// subscribed, and closes every subscriber channel — new subscribers from
// here on replay the stored terminal event instead.
func (b *broadcaster) finish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.terminal = &e
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
		close(ch)
	}
	b.subs = nil
}

// activeSubscribers reports how many live (non-terminal) subscriber
// channels exist, feeding the `active_streams` metric.
func (b *broadcaster) activeSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
