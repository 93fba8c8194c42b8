// Package watch provides the live-view subscription mechanism: repositories
// signal a topic after every mutation and subscribers re-evaluate their query
// on each signal. Subscriptions are explicit handles owned by whoever opened
// the view; cancelling one stops further delivery.
package watch

import "sync"

// Topics signalled by the repositories
const (
	TopicTasks         = "tasks"
	TopicNotifications = "notifications"
)

// Hub fans out change signals per topic
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]chan struct{})}
}

// Subscription is the cancellation handle returned by Subscribe
type Subscription struct {
	hub   *Hub
	topic string
	id    uint64

	// C receives one signal per change batch. The channel has capacity 1
	// and signals coalesce, so a slow consumer sees at least one signal
	// for any burst of changes and never blocks a writer.
	C chan struct{}
}

// Subscribe registers interest in a topic. The caller must Cancel the
// subscription when the view is torn down (e.g. on logout).
func (h *Hub) Subscribe(topic string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan struct{}, 1)
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[uint64]chan struct{})
	}
	h.subs[topic][h.nextID] = ch
	return &Subscription{hub: h, topic: topic, id: h.nextID, C: ch}
}

// Cancel removes the subscription; no signal is delivered after it returns.
func (s *Subscription) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if subs, ok := s.hub.subs[s.topic]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.hub.subs, s.topic)
		}
	}
}

// Signal notifies every subscriber of a topic that something changed.
func (h *Hub) Signal(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- struct{}{}:
		default: // a signal is already pending, coalesce
		}
	}
}
