package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar implements Calendar over the Google Calendar v3 API.
type GoogleCalendar struct {
	service    *gcal.Service
	calendarID string
	location   *time.Location
}

// NewGoogleCalendar authenticates with a service account credentials file.
func NewGoogleCalendar(ctx context.Context, credentialsFile, calendarID string, loc *time.Location) (*GoogleCalendar, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, errors.New("calendar: google credentials file is required")
	}
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar: create google service: %w", err)
	}
	return NewGoogleCalendarFromService(svc, calendarID, loc), nil
}

// NewGoogleCalendarFromService wraps an existing service client.
func NewGoogleCalendarFromService(svc *gcal.Service, calendarID string, loc *time.Location) *GoogleCalendar {
	if svc == nil {
		panic("calendar: google service cannot be nil")
	}
	if strings.TrimSpace(calendarID) == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendar{service: svc, calendarID: calendarID, location: loc}
}

// ListEvents pages through every single (expanded) event in the window.
func (g *GoogleCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	var out []Event
	pageToken := ""
	for {
		call := g.service.Events.List(g.calendarID).
			TimeMin(timeMin.In(g.location).Format(time.RFC3339)).
			TimeMax(timeMax.In(g.location).Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("calendar: list events: %w", err)
		}
		for _, item := range resp.Items {
			if item.Status == "cancelled" {
				continue
			}
			ev, err := g.fromGoogle(item)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

// InsertEvent creates the event on the configured calendar.
func (g *GoogleCalendar) InsertEvent(ctx context.Context, event Event) (string, error) {
	body := &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.In(g.location).Format(time.RFC3339),
			TimeZone: g.location.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.In(g.location).Format(time.RFC3339),
			TimeZone: g.location.String(),
		},
	}
	created, err := g.service.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	return created.Id, nil
}

func (g *GoogleCalendar) fromGoogle(item *gcal.Event) (Event, error) {
	start, err := g.parseEventTime(item.Start)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: event %s start: %w", item.Id, err)
	}
	end, err := g.parseEventTime(item.End)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: event %s end: %w", item.Id, err)
	}
	return Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
	}, nil
}

// parseEventTime handles timed events (RFC3339) and all-day events (date only,
// taken as midnight in the clinic location).
func (g *GoogleCalendar) parseEventTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, errors.New("missing time")
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(g.location), nil
	}
	if dt.Date != "" {
		return time.ParseInLocation("2006-01-02", dt.Date, g.location)
	}
	return time.Time{}, errors.New("missing time")
}

var _ Calendar = (*GoogleCalendar)(nil)
