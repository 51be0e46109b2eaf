// Package annotations provides a low-overhead event system for tracing store
// operations: pattern matches, extractions, graph removal, snapshots and
// notation parsing.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Pattern evaluation
	PatternMatch   = "pattern/match"
	PatternExtract = "pattern/extract"
	PatternCount   = "pattern/count"

	// Structural changes
	GraphRemoved = "graph/removed"
	StoreIndexed = "store/indexed"

	// Delegated serialization
	SnapshotSaved   = "snapshot/saved"
	SnapshotLoaded  = "snapshot/loaded"
	NotationParsed  = "notation/parsed"
	RequestServed   = "server/request"
	ErrorSnapshot   = "error/snapshot"
	ErrorNotation   = "error/notation"
	ErrorConcurrent = "error/concurrent-mutation"
)

// Event represents a single annotation event.
type Event struct {
	Name    string         // Event name using hierarchical constants above
	Start   time.Time      // Start timestamp
	End     time.Time      // End timestamp
	Latency time.Duration  // Duration (End - Start)
	Data    map[string]any // Additional event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Collector accumulates events. A nil *Collector is valid and discards
// everything, so callers never need to guard.
type Collector struct {
	handler Handler
	mu      sync.Mutex
	events  []Event
}

// NewCollector creates a new annotation collector. With a nil handler events
// are still recorded.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		handler: handler,
		events:  make([]Event, 0, 64),
	}
}

// Enabled reports whether events are being recorded. Producers check it
// before building event data on hot paths.
func (c *Collector) Enabled() bool {
	return c != nil
}

// Add records a new event.
// Thread-safe for concurrent access.
func (c *Collector) Add(event Event) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	if c.handler != nil {
		c.handler(event)
	}
}

// AddTiming records an event that started at start and ends now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]any) {
	if c == nil {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns all collected events.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	eventsCopy := make([]Event, len(c.events))
	copy(eventsCopy, c.events)
	return eventsCopy
}

// Named returns the collected events with the given name.
func (c *Collector) Named(name string) []Event {
	var out []Event
	for _, e := range c.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the collector for reuse.
// Thread-safe for concurrent access.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
