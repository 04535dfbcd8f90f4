package garden

import (
	"testing"
)

func TestNotifier_PublishDeliversToSubscribers(t *testing.T) {
	n := NewNotifier()
	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Publish(Event{Kind: EventPlaced})
	if got := <-ch1; got.Kind != EventPlaced {
		t.Errorf("ch1 got %q", got.Kind)
	}
	if got := <-ch2; got.Kind != EventPlaced {
		t.Errorf("ch2 got %q", got.Kind)
	}
}

func TestNotifier_UnsubscribeClosesChannel(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	n.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("channel should be closed after Unsubscribe")
	}
	if n.Subscribers() != 0 {
		t.Errorf("subscribers = %d, want 0", n.Subscribers())
	}
	// Second unsubscribe must not panic on a closed channel.
	n.Unsubscribe(ch)
}

func TestNotifier_LaggingSubscriberDoesNotBlock(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer*2; i++ {
		n.Publish(Event{Kind: EventMoved})
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d events, want %d", len(ch), subscriberBuffer)
	}
}
