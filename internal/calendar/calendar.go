// Package calendar adapts the shared external calendar the clinic books into.
package calendar

import (
	"context"
	"time"
)

// Event is a calendar entry. Start and End always carry a location so they
// serialize with an explicit UTC offset.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Overlaps reports strict half-open overlap with [start, end).
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}

// Calendar is the narrow contract the scheduler depends on.
type Calendar interface {
	// ListEvents returns events intersecting [timeMin, timeMax).
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	// InsertEvent creates the event and returns its provider reference.
	InsertEvent(ctx context.Context, event Event) (string, error)
}
