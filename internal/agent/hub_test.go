package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("req-1")
	defer unsubscribe()
	other, unsubscribeOther := h.Subscribe("req-2")
	defer unsubscribeOther()

	h.Publish("req-1", Event{Event: "state", RequestID: "req-1", Payload: map[string]any{"state": "PLANNING"}})

	select {
	case b := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal(b, &ev))
		assert.Equal(t, "state", ev.Event)
	default:
		t.Fatal("expected an event for req-1")
	}
	select {
	case <-other:
		t.Fatal("req-2 subscriber must not receive req-1 events")
	default:
	}
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("req-1")
	defer unsubscribe()

	// overflow the buffer; publishes must not block
	for i := 0; i < 100; i++ {
		h.Publish("req-1", Event{Event: "state", RequestID: "req-1"})
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestHubIgnoresEmptyRequestID(t *testing.T) {
	h := NewHub()
	h.Publish("", Event{Event: "state"})
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("req-1")
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	// publishing after unsubscribe is a no-op
	h.Publish("req-1", Event{Event: "state", RequestID: "req-1"})
}
