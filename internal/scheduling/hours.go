package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Request layouts for date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Window is a half-open range of start hours [Open, Close).
type Window struct {
	Open  int
	Close int
}

func (w Window) contains(hour int) bool {
	return hour >= w.Open && hour < w.Close
}

// Hours validates appointment instants against the clinic's opening rules.
// Rules run in order and the first failure wins.
type Hours struct {
	Location      *time.Location
	Weekday       Window
	Saturday      Window
	MinLead       time.Duration
	EveningCutoff int
	MaxAdvance    time.Duration
	Now           func() time.Time
}

// DefaultHours returns the clinic schedule: weekdays 14-19, Saturdays 8-14.
func DefaultHours(loc *time.Location) Hours {
	if loc == nil {
		loc = time.UTC
	}
	return Hours{
		Location:      loc,
		Weekday:       Window{Open: 14, Close: 19},
		Saturday:      Window{Open: 8, Close: 14},
		MinLead:       30 * time.Minute,
		EveningCutoff: 18,
		MaxAdvance:    30 * 24 * time.Hour,
		Now:           time.Now,
	}
}

func (h Hours) now() time.Time {
	if h.Now == nil {
		return time.Now().In(h.loc())
	}
	return h.Now().In(h.loc())
}

func (h Hours) loc() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

// Parse reads a date ("2006-01-02") and clock ("15:04") in the clinic location.
func (h Hours) Parse(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, invalid(RuleFormat, "Indica la fecha y la hora de la cita.")
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, h.loc())
	if err != nil {
		return time.Time{}, invalid(RuleFormat, "La fecha debe tener el formato AAAA-MM-DD y la hora HH:MM.")
	}
	return t, nil
}

// Validate parses and checks a requested slot, returning its start instant.
func (h Hours) Validate(date, clock string) (time.Time, error) {
	start, err := h.Parse(date, clock)
	if err != nil {
		return time.Time{}, err
	}
	if err := h.Check(start); err != nil {
		return time.Time{}, err
	}
	return start, nil
}

// Check applies the scheduling rules to an already parsed start instant.
func (h Hours) Check(start time.Time) error {
	now := h.now()
	start = start.In(h.loc())

	if !start.After(now) {
		return invalid(RulePast, "La fecha y hora seleccionadas ya pasaron. Elige un horario futuro.")
	}
	if start.Weekday() == time.Sunday {
		return invalid(RuleSunday, "No atendemos los domingos. Por favor elige otro día.")
	}
	if start.Weekday() == time.Saturday {
		if !h.Saturday.contains(start.Hour()) {
			return invalid(RuleHours, fmt.Sprintf("Los sábados atendemos de %02d:00 a %02d:00.", h.Saturday.Open, h.Saturday.Close))
		}
	} else if !h.Weekday.contains(start.Hour()) {
		return invalid(RuleHours, fmt.Sprintf("De lunes a viernes atendemos de %02d:00 a %02d:00.", h.Weekday.Open, h.Weekday.Close))
	}
	if start.Sub(now) < h.MinLead {
		return invalid(RuleLeadTime, fmt.Sprintf("Las citas deben agendarse con al menos %d minutos de anticipación.", int(h.MinLead.Minutes())))
	}
	// Overlaps the weekday window at the boundary; kept as its own rule.
	if sameDay(start, now) && now.Hour() >= h.EveningCutoff && start.Hour() >= h.EveningCutoff {
		return invalid(RuleSameDayEvening, fmt.Sprintf("Ya no es posible agendar citas para hoy a partir de las %02d:00.", h.EveningCutoff))
	}
	if h.MaxAdvance > 0 && start.Sub(now) > h.MaxAdvance {
		return invalid(RuleTooFar, fmt.Sprintf("Solo se pueden agendar citas con hasta %d días de anticipación.", int(h.MaxAdvance.Hours()/24)))
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
