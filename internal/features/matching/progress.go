package matching

import (
	"sync"
)

// ProgressHub fans batch progress out to websocket subscribers. Slow
// subscribers drop events instead of blocking the run.
type ProgressHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan ProgressEvent]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subs: make(map[string]map[chan ProgressEvent]struct{}),
	}
}

// Subscribe registers for events of one instance; always pair with Unsubscribe
func (h *ProgressHub) Subscribe(instanceID string) chan ProgressEvent {
	ch := make(chan ProgressEvent, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[instanceID] == nil {
		h.subs[instanceID] = make(map[chan ProgressEvent]struct{})
	}
	h.subs[instanceID][ch] = struct{}{}
	return ch
}

func (h *ProgressHub) Unsubscribe(instanceID string, ch chan ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[instanceID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, instanceID)
		}
	}
	close(ch)
}

func (h *ProgressHub) Publish(event ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[event.InstanceID] {
		select {
		case ch <- event:
		default:
		}
	}
}
