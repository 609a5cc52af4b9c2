package main

import (
	"sync"
	"time"
)

const maxHistoryEvents = 32

// History keeps the most recent corrections in memory. Nothing is persisted.
type History struct {
	mu     sync.RWMutex
	events []Correction
	limit  int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = maxHistoryEvents
	}
	return &History{limit: limit}
}

func (h *History) Add(c Correction) {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, c)
	if len(h.events) > h.limit {
		h.events = h.events[len(h.events)-h.limit:]
	}
}

// Latest returns the newest correction, if any.
func (h *History) Latest() (Correction, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.events) == 0 {
		return Correction{}, false
	}
	return h.events[len(h.events)-1], true
}

// Snapshot returns the corrections oldest first.
func (h *History) Snapshot() []Correction {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Correction, len(h.events))
	copy(out, h.events)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}
