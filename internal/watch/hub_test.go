package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drained(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSignalReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(TopicTasks)
	b := hub.Subscribe(TopicTasks)
	other := hub.Subscribe(TopicNotifications)
	defer a.Cancel()
	defer b.Cancel()
	defer other.Cancel()

	hub.Signal(TopicTasks)

	assert.True(t, drained(a.C))
	assert.True(t, drained(b.C))
	assert.False(t, drained(other.C), "signal must not cross topics")
}

func TestSignalsCoalesce(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicTasks)
	defer sub.Cancel()

	// a burst of changes while the consumer is slow collapses into one
	// pending signal and never blocks the writer
	for i := 0; i < 10; i++ {
		hub.Signal(TopicTasks)
	}

	require.True(t, drained(sub.C))
	assert.False(t, drained(sub.C))
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicTasks)
	sub.Cancel()

	hub.Signal(TopicTasks)
	assert.False(t, drained(sub.C))

	// cancelling twice is harmless
	sub.Cancel()
}

func TestSignalWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Signal(TopicTasks) // must not panic
}
