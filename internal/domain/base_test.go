package domain

import (
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type testEvent struct {
	kind string
}

func (e testEvent) Type() string {
	return e.kind
}

func (testEvent) PublishedAt() time.Time {
	return time.Time{}
}

func TestAggregateEvents(t *testing.T) {
	var a Aggregate
	a.PushEvent(testEvent{kind: "first"})
	a.PushEvent(testEvent{kind: "second"})

	events := a.PopEvents()
	require.Len(t, events, 2)
	require.Equal(t, "first", events[0].Type())
	require.Equal(t, "second", events[1].Type())
	require.Empty(t, a.PopEvents())

	a.PushEvent(testEvent{kind: "third"})
	require.Len(t, a.PopEvents(), 1)
}
