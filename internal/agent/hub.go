package agent

import (
	"encoding/json"
	"sync"
)

// Event is a progress update for one verification request, delivered to SSE
// subscribers keyed by request id.
type Event struct {
	Event     string `json:"event"`
	RequestID string `json:"request_id"`
	Payload   any    `json:"payload,omitempty"`
}

type subscriber chan []byte

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[subscriber]struct{} // requestID -> set of subscribers
}

func NewHub() *Hub { return &Hub{subs: map[string]map[subscriber]struct{}{}} }

func (h *Hub) Subscribe(requestID string) (<-chan []byte, func()) {
	ch := make(subscriber, 16)
	h.mu.Lock()
	set := h.subs[requestID]
	if set == nil {
		set = map[subscriber]struct{}{}
		h.subs[requestID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()
	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.subs[requestID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, requestID)
			}
		}
		close(ch)
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

func (h *Hub) Publish(requestID string, ev Event) {
	if requestID == "" {
		return
	}
	b, _ := json.Marshal(ev)
	h.mu.RLock()
	set := h.subs[requestID]
	for ch := range set {
		// non-blocking send
		select {
		case ch <- b:
		default:
		}
	}
	h.mu.RUnlock()
}
