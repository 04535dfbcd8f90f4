package garden

import (
	"sync"
	"time"
)

type EventKind string

const (
	EventLoaded    EventKind = "loaded"
	EventAwarded   EventKind = "awarded"
	EventPurchased EventKind = "purchased"
	EventCredited  EventKind = "credited"
	EventDebited   EventKind = "debited"
	EventPlaced    EventKind = "placed"
	EventMoved     EventKind = "moved"
	EventResized   EventKind = "resized"
	EventRecolored EventKind = "recolored"
	EventRemoved   EventKind = "removed"
)

// Event tells observers the garden changed. NewlyUnlocked is only set for awards.
type Event struct {
	Kind                EventKind `json:"kind"`
	ItemID              ItemID    `json:"itemId,omitempty"`
	PlacedID            string    `json:"placedId,omitempty"`
	NewlyUnlocked       []ItemID  `json:"newlyUnlocked,omitempty"`
	LifetimeCompletions int       `json:"lifetimeCompletions"`
	Currency            int       `json:"currency"`
	At                  time.Time `json:"at"`
}

const subscriberBuffer = 16

// Notifier fans events out to subscribers without waiting on them.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	if _, ok := n.subs[ch]; ok {
		delete(n.subs, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Publish delivers an event to all subscribers.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	for ch := range n.subs {
		select {
		case ch <- ev:
		default:
			// Lagging subscriber; the next event carries fresh counters anyway.
		}
	}
	n.mu.Unlock()
}

// Subscribers reports the current subscriber count.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
