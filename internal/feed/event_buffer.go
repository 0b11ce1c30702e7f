package feed

import (
	"strconv"
	"sync"
	"time"
)

type StreamEvent struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

// EventBuffer keeps the last max events for Last-Event-ID replay and fans
// new ones out to subscribers. Slow subscribers miss events rather than
// block the publisher.
type EventBuffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []StreamEvent
	watchers map[chan StreamEvent]struct{}
	closed   bool
}

func NewEventBuffer(max int) *EventBuffer {
	if max <= 0 {
		max = 200
	}
	return &EventBuffer{
		max:      max,
		watchers: map[chan StreamEvent]struct{}{},
	}
}

func (b *EventBuffer) Append(event string, data any) StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return StreamEvent{}
	}
	b.nextID++
	ev := StreamEvent{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			droppedStreamEvents.Inc()
		}
	}
	return ev
}

// ReplayAfter returns buffered events with an id above lastEventID. An empty
// or unparsable id replays nothing; new subscribers start live.
func (b *EventBuffer) ReplayAfter(lastEventID string) []StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replayLocked(lastEventID)
}

func (b *EventBuffer) replayLocked(lastEventID string) []StreamEvent {
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		return nil
	}
	out := make([]StreamEvent, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *EventBuffer) Subscribe() chan StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked()
}

// SubscribeAfter registers a watcher and returns the buffered events after
// lastEventID in one step. Every event lands either in the replay or on the
// channel, never both and never neither.
func (b *EventBuffer) SubscribeAfter(lastEventID string) (chan StreamEvent, []StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(), b.replayLocked(lastEventID)
}

func (b *EventBuffer) subscribeLocked() chan StreamEvent {
	ch := make(chan StreamEvent, 32)
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	streamSubscribers.Inc()
	return ch
}

func (b *EventBuffer) Unsubscribe(ch chan StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
		streamSubscribers.Dec()
	}
}

func (b *EventBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
		streamSubscribers.Dec()
	}
}
