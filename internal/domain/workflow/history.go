package workflow

import "sync"

// DefaultHistoryLimit bounds the execution history when no limit is given.
const DefaultHistoryLimit = 100

// History keeps the most recent executions in memory.
type History struct {
	mu    sync.RWMutex
	limit int
	items []*Execution // oldest first
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Add records a copy of e, evicting the oldest entry when full.
func (h *History) Add(e *Execution) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, e.clone())
	if over := len(h.items) - h.limit; over > 0 {
		h.items = append(h.items[:0:0], h.items[over:]...)
	}
}

// List returns summaries newest first. The result is never nil.
func (h *History) List() []Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Summary, 0, len(h.items))
	for i := len(h.items) - 1; i >= 0; i-- {
		out = append(out, h.items[i].Summary())
	}
	return out
}

// Get returns a copy of the execution with id.
func (h *History) Get(id string) (*Execution, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, e := range h.items {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return nil, false
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}
