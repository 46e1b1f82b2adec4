package domain

import (
	"time"
)

// Event is a fact about an aggregate that handlers learn about after the
// change that raised it is committed.
type Event interface {
	Type() string
	PublishedAt() time.Time
}

// Aggregate is embedded by domain roots that record events while they are
// being changed. Storage adapters drain the buffer through EventSource once
// the root is persisted, so an aggregate loaded and never saved raises nothing.
type Aggregate struct {
	events []Event
}

// PopEvents returns the buffered events in the order they were raised and
// empties the buffer.
func (a *Aggregate) PopEvents() []Event {
	events := a.events
	a.events = nil
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.events = append(a.events, e)
}

// EventSource is anything that buffers domain events until a unit of work collects them.
type EventSource interface {
	PopEvents() []Event
}
