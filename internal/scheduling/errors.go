package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotTaken means the calendar already holds an overlapping event.
	ErrSlotTaken = errors.New("scheduling: slot already taken")
	// ErrCalendarUnavailable wraps any failure talking to the external calendar.
	ErrCalendarUnavailable = errors.New("scheduling: calendar unavailable")
	// ErrLockUnavailable means the slot lock could not be acquired in time.
	ErrLockUnavailable = errors.New("scheduling: slot lock unavailable")
)

// Validation rule identifiers, in evaluation order.
const (
	RuleFormat         = "format"
	RulePhone          = "phone"
	RulePast           = "past"
	RuleSunday         = "sunday"
	RuleHours          = "hours"
	RuleLeadTime       = "lead_time"
	RuleSameDayEvening = "same_day_evening"
	RuleTooFar         = "too_far"
)

// ValidationError is a user-correctable problem with an appointment request.
// Reason is ready to show to the user.
type ValidationError struct {
	Rule   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scheduling: invalid appointment (%s): %s", e.Rule, e.Reason)
}

func invalid(rule, reason string) *ValidationError {
	return &ValidationError{Rule: rule, Reason: reason}
}
