package dialogue

import (
	"context"

	"github.com/wolfman30/equilibra/internal/scheduling"
)

// ReplyRequest is what a Responder needs to produce the next bot line.
type ReplyRequest struct {
	Symptom  string
	UserText string
	History  []Interaction
}

// Responder produces a reply. It must always return usable text and never
// surface upstream failures.
type Responder interface {
	Respond(ctx context.Context, req ReplyRequest) string
}

// Booker books an appointment request against the calendar.
type Booker interface {
	Book(ctx context.Context, req scheduling.AppointmentRequest) (scheduling.Result, error)
}
