// Package dialogue drives the emotional-support conversation: symptom intake,
// onset evaluation, open conversation, referral and appointment booking.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/equilibra/internal/catalog"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/internal/safety"
	"github.com/wolfman30/equilibra/internal/scheduling"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// Action tags an Input.
type Action string

const (
	ActionSelectSymptom      Action = "select_symptom"
	ActionSubmitOnset        Action = "submit_onset"
	ActionMessage            Action = "message"
	ActionRequestAppointment Action = "request_appointment"
	ActionCancel             Action = "cancel"
	ActionSubmitAppointment  Action = "submit_appointment"
	ActionReset              Action = "reset"
)

// AppointmentForm is the booking form as submitted.
type AppointmentForm struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Phone string `json:"phone"`
}

// Input is one user event.
type Input struct {
	Action      Action           `json:"action"`
	Symptom     string           `json:"symptom,omitempty"`
	OnsetDate   string           `json:"onset_date,omitempty"`
	Text        string           `json:"text,omitempty"`
	Appointment *AppointmentForm `json:"appointment,omitempty"`
}

// Turn is the machine's answer to one Input.
type Turn struct {
	Reply   string             `json:"reply"`
	State   State              `json:"state"`
	Crisis  bool               `json:"crisis"`
	Booking *scheduling.Result `json:"booking,omitempty"`
}

const maxOnsetYears = 5

// Option configures a Machine.
type Option func(*Machine)

func WithIntentPolicy(p IntentPolicy) Option {
	return func(m *Machine) {
		if p != nil {
			m.intent = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLocation sets where onset dates are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) {
		if loc != nil {
			m.loc = loc
		}
	}
}

func WithMetrics(mt *metrics.ChatMetrics) Option {
	return func(m *Machine) {
		m.metrics = mt
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// Machine is stateless: every call takes a Session snapshot and returns the
// next one. It performs no I/O besides calling its collaborators.
type Machine struct {
	responder Responder
	booker    Booker
	detector  *safety.Detector
	intent    IntentPolicy
	now       func() time.Time
	loc       *time.Location
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
}

func NewMachine(responder Responder, booker Booker, opts ...Option) *Machine {
	if responder == nil {
		panic("dialogue: responder cannot be nil")
	}
	m := &Machine{
		responder: responder,
		booker:    booker,
		detector:  safety.NewDetector(),
		intent:    ExplicitOnly{},
		now:       time.Now,
		loc:       time.UTC,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Welcome returns the greeting shown with a fresh session.
func Welcome() string {
	return msgWelcome
}

// Handle applies one input. A zero Session is treated as a new conversation.
func (m *Machine) Handle(ctx context.Context, s Session, in Input) (Session, Turn) {
	now := m.now()
	if in.Action == ActionReset {
		fresh := NewSession(now)
		fresh = fresh.appendInteraction(Interaction{Role: RoleBot, Text: msgWelcome, Timestamp: now})
		return fresh, Turn{Reply: msgWelcome, State: fresh.State}
	}
	if s.ID == "" || !s.State.valid() {
		s = NewSession(now)
	}

	s.InteractionCount++
	s.UpdatedAt = now
	if line := userLine(in); line != "" {
		s = s.appendInteraction(Interaction{Role: RoleUser, Text: line, Symptom: s.CurrentSymptom, Timestamp: now})
	}
	if text := strings.TrimSpace(in.Text); text != "" {
		s.EngagementScore = Engagement(text)
		if match, ok := m.detector.Detect(ctx, text); ok {
			m.metrics.ObserveCrisis()
			m.logger.Warn("crisis indicator matched", "session_id", s.ID, "indicator", match.Indicator, "state", s.State)
			return m.reply(s, now, match.Message, Turn{Crisis: true})
		}
	}

	var (
		reply string
		turn  Turn
	)
	switch s.State {
	case StateIntake:
		s, reply = m.intake(s, in)
	case StateEvaluation:
		s, reply = m.evaluation(ctx, s, in, now)
	case StateDeepening:
		s, reply = m.deepening(ctx, s, in)
	case StateReferral:
		s, reply = m.referral(ctx, s, in)
	case StateBooking:
		s, reply, turn.Booking = m.booking(ctx, s, in)
	default:
		reply = msgAlreadyBooked
	}
	return m.reply(s, now, reply, turn)
}

func (m *Machine) reply(s Session, now time.Time, text string, turn Turn) (Session, Turn) {
	s = s.appendInteraction(Interaction{Role: RoleBot, Text: text, Symptom: s.CurrentSymptom, Timestamp: now})
	turn.Reply = text
	turn.State = s.State
	return s, turn
}

func (m *Machine) intake(s Session, in Input) (Session, string) {
	name := in.Symptom
	if in.Action == ActionMessage {
		name = in.Text
	}
	if in.Action != ActionSelectSymptom && in.Action != ActionMessage {
		return s, msgChooseSymptom
	}
	symptom, ok := catalog.Canonical(name)
	if !ok {
		return s, msgChooseSymptom
	}
	s.CurrentSymptom = symptom
	s.State = StateEvaluation
	return s, fmt.Sprintf(msgAskOnset, strings.ToLower(symptom))
}

func (m *Machine) evaluation(ctx context.Context, s Session, in Input, now time.Time) (Session, string) {
	raw := in.OnsetDate
	if in.Action == ActionMessage {
		raw = in.Text
	}
	if in.Action != ActionSubmitOnset && in.Action != ActionMessage {
		return s, fmt.Sprintf(msgAskOnset, strings.ToLower(s.CurrentSymptom))
	}
	onset, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), m.loc)
	if err != nil {
		return s, msgOnsetFormat
	}
	today := now.In(m.loc)
	days := daysBetween(onset, today)
	if days < 0 {
		return s, msgOnsetFuture
	}
	if onset.Before(startOfDay(today).AddDate(-maxOnsetYears, 0, 0)) {
		return s, msgOnsetTooOld
	}

	s.OnsetDate = onset.Format("2006-01-02")
	s.State = StateDeepening
	return s, onsetAcknowledgment(days) + " " + m.respond(ctx, s, "")
}

func onsetAcknowledgment(days int) string {
	switch {
	case days < 30:
		return msgOnsetRecent
	case days < 365:
		return msgOnsetMonths
	default:
		return msgOnsetYears
	}
}

func (m *Machine) deepening(ctx context.Context, s Session, in Input) (Session, string) {
	switch in.Action {
	case ActionRequestAppointment:
		s.State = StateBooking
		return s, msgBookingPrompt
	case ActionMessage:
		if strings.TrimSpace(in.Text) == "" {
			return s, msgDeepeningNudge
		}
		if m.intent.WantsAppointment(in.Text) {
			s.State = StateReferral
			return s, msgReferralQuestion
		}
		return s, m.respond(ctx, s, in.Text)
	default:
		return s, msgDeepeningNudge
	}
}

func (m *Machine) referral(ctx context.Context, s Session, in Input) (Session, string) {
	switch {
	case in.Action == ActionRequestAppointment,
		in.Action == ActionMessage && IsAffirmative(in.Text):
		s.State = StateBooking
		return s, msgBookingPrompt
	case in.Action == ActionMessage && strings.TrimSpace(in.Text) != "" && !isNegative(in.Text):
		s.State = StateDeepening
		return s, msgReferralDeclined + " " + m.respond(ctx, s, in.Text)
	default:
		s.State = StateDeepening
		return s, msgReferralDeclined + " " + msgDeepeningNudge
	}
}

func isNegative(text string) bool {
	w := words(text)
	return len(w) > 0 && w[0] == "no"
}

func (m *Machine) booking(ctx context.Context, s Session, in Input) (Session, string, *scheduling.Result) {
	switch in.Action {
	case ActionCancel:
		s.State = StateDeepening
		return s, msgBookingCancelled, nil
	case ActionSubmitAppointment:
	default:
		return s, msgBookingPrompt, nil
	}

	form := in.Appointment
	if form == nil || strings.TrimSpace(form.Date) == "" || strings.TrimSpace(form.Time) == "" || strings.TrimSpace(form.Phone) == "" {
		return s, msgBookingMissing, nil
	}
	if m.booker == nil {
		return s, msgBookingFailed, nil
	}

	res, err := m.booker.Book(ctx, scheduling.AppointmentRequest{
		Date:    strings.TrimSpace(form.Date),
		Time:    strings.TrimSpace(form.Time),
		Phone:   strings.TrimSpace(form.Phone),
		Symptom: s.CurrentSymptom,
	})
	var verr *scheduling.ValidationError
	switch {
	case err == nil:
		s.State = StateDone
		reply := fmt.Sprintf(msgBooked, res.Start.Format("2006-01-02"), res.Start.Format("15:04"))
		if !res.Notified {
			reply += msgBookedNoEmail
		}
		return s, reply, &res
	case errors.As(err, &verr):
		return s, verr.Reason, nil
	case errors.Is(err, scheduling.ErrSlotTaken):
		return s, msgSlotTaken, nil
	default:
		m.logger.Error("booking failed", "session_id", s.ID, "error", err)
		return s, msgBookingFailed, nil
	}
}

func (m *Machine) respond(ctx context.Context, s Session, userText string) string {
	return m.responder.Respond(ctx, ReplyRequest{
		Symptom:  s.CurrentSymptom,
		UserText: userText,
		History:  s.History,
	})
}

// userLine is the history entry recorded for an input, if any.
func userLine(in Input) string {
	switch in.Action {
	case ActionSelectSymptom:
		return strings.TrimSpace(in.Symptom)
	case ActionSubmitOnset:
		return strings.TrimSpace(in.OnsetDate)
	case ActionSubmitAppointment:
		if in.Appointment == nil {
			return ""
		}
		return strings.TrimSpace(in.Appointment.Date + " " + in.Appointment.Time)
	default:
		return strings.TrimSpace(in.Text)
	}
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
