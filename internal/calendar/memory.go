package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCalendar is an in-process Calendar for development and tests.
// Inserted events show up in later listings, like the real service.
type MemoryCalendar struct {
	mu          sync.Mutex
	events      []Event
	listCalls   int
	insertCalls int
}

// NewMemoryCalendar returns a calendar pre-populated with events.
func NewMemoryCalendar(events ...Event) *MemoryCalendar {
	c := &MemoryCalendar{}
	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		c.events = append(c.events, ev)
	}
	return c
}

func (c *MemoryCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	var out []Event
	for _, ev := range c.events {
		if ev.Overlaps(timeMin, timeMax) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (c *MemoryCalendar) InsertEvent(ctx context.Context, event Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertCalls++
	event.ID = uuid.NewString()
	c.events = append(c.events, event)
	return event.ID, nil
}

// Events returns a copy of every stored event.
func (c *MemoryCalendar) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Calls reports how many list and insert calls were served.
func (c *MemoryCalendar) Calls() (list, insert int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listCalls, c.insertCalls
}

var _ Calendar = (*MemoryCalendar)(nil)
