// Package scheduling validates and books appointments against the shared
// clinic calendar.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/equilibra/internal/calendar"
	"github.com/wolfman30/equilibra/internal/notify"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// AppointmentRequest is a candidate booking as typed by the user.
type AppointmentRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Phone   string `json:"phone"`
	Symptom string `json:"symptom,omitempty"`
}

// Result describes a completed booking.
// Notified is false when the confirmation email could not be sent.
type Result struct {
	Success  bool      `json:"success"`
	EventRef string    `json:"event_ref"`
	Notified bool      `json:"notified"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Notifier delivers the booking notice. Failures never undo a booking.
type Notifier interface {
	NotifyBooking(ctx context.Context, notice notify.BookingNotice) error
}

// Config tunes the coordinator.
type Config struct {
	Hours       Hours
	PhonePrefix string
	Duration    time.Duration
	CallTimeout time.Duration
	LockWait    time.Duration
}

// Option configures optional collaborators.
type Option func(*Coordinator)

func WithLocker(l SlotLocker) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.locker = l
		}
	}
}

func WithCache(cache AvailabilityCache) Option {
	return func(c *Coordinator) {
		if cache != nil {
			c.cache = cache
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// Coordinator runs validate, verify and book against the external calendar.
type Coordinator struct {
	calendar    calendar.Calendar
	hours       Hours
	phonePrefix string
	duration    time.Duration
	callTimeout time.Duration
	lockWait    time.Duration
	locker      SlotLocker
	cache       AvailabilityCache
	notifier    Notifier
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
	tracer      trace.Tracer
}

func NewCoordinator(cal calendar.Calendar, cfg Config, logger *logging.Logger, opts ...Option) *Coordinator {
	if cal == nil {
		panic("scheduling: calendar cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Hours.Location == nil {
		cfg.Hours = DefaultHours(time.UTC)
	}
	if cfg.Duration <= 0 {
		cfg.Duration = time.Hour
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 2*cfg.CallTimeout + time.Second
	}
	c := &Coordinator{
		calendar:    cal,
		hours:       cfg.Hours,
		phonePrefix: cfg.PhonePrefix,
		duration:    cfg.Duration,
		callTimeout: cfg.CallTimeout,
		lockWait:    cfg.LockWait,
		locker:      NewMemoryLocker(),
		cache:       NewMemoryAvailabilityCache(DefaultAvailabilityTTL),
		logger:      logger,
		tracer:      otel.Tracer("equilibra/scheduling"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hours exposes the validator so callers can pre-check without booking.
func (c *Coordinator) Hours() Hours {
	return c.hours
}

// Book validates the request, re-checks the day against the live calendar
// under the day lock and inserts the event. Validation failures return a
// *ValidationError, conflicts ErrSlotTaken and upstream failures wrap
// ErrCalendarUnavailable or ErrLockUnavailable.
func (c *Coordinator) Book(ctx context.Context, req AppointmentRequest) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "scheduling.book")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.date", req.Date), attribute.String("appointment.time", req.Time))

	if err := ValidatePhone(req.Phone, c.phonePrefix); err != nil {
		c.metrics.ObserveBooking(metrics.OutcomeInvalid)
		return Result{}, err
	}
	start, err := c.hours.Validate(req.Date, req.Time)
	if err != nil {
		c.metrics.ObserveBooking(metrics.OutcomeInvalid)
		return Result{}, err
	}
	end := start.Add(c.duration)

	lockCtx, cancel := context.WithTimeout(ctx, c.lockWait)
	release, err := c.locker.Lock(lockCtx, start.Format(DateLayout))
	cancel()
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveBooking(metrics.OutcomeUnavailable)
		return Result{}, fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}
	ref, err := c.reserve(ctx, start, end, req)
	release()
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrSlotTaken) {
			c.metrics.ObserveBooking(metrics.OutcomeConflict)
		} else {
			c.metrics.ObserveBooking(metrics.OutcomeUnavailable)
		}
		return Result{}, err
	}
	c.metrics.ObserveBooking(metrics.OutcomeBooked)

	result := Result{Success: true, EventRef: ref, Start: start, End: end}
	result.Notified = c.notify(ctx, notify.BookingNotice{
		Start:    start,
		Phone:    strings.TrimSpace(req.Phone),
		Symptom:  req.Symptom,
		EventRef: ref,
	})
	c.cache.Invalidate(start.Format(DateLayout), start.Format(TimeLayout))

	c.logger.Info("appointment booked", "event_ref", ref, "date", req.Date, "time", req.Time, "notified", result.Notified)
	return result, nil
}

// reserve is the uncached re-check plus insert. The caller holds the day lock.
func (c *Coordinator) reserve(ctx context.Context, start, end time.Time, req AppointmentRequest) (string, error) {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	events, err := c.listEvents(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	for _, ev := range events {
		if ev.Overlaps(start, end) {
			return "", ErrSlotTaken
		}
	}

	event := calendar.Event{
		Summary:     "Cita psicológica",
		Description: bookingDescription(req),
		Start:       start,
		End:         end,
	}
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	began := time.Now()
	ref, err := c.calendar.InsertEvent(callCtx, event)
	c.metrics.ObserveExternalCall("calendar_insert", err, time.Since(began).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: insert event: %w", ErrCalendarUnavailable, err)
	}
	return ref, nil
}

func (c *Coordinator) listEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	began := time.Now()
	events, err := c.calendar.ListEvents(callCtx, from, to)
	c.metrics.ObserveExternalCall("calendar_list", err, time.Since(began).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %w", ErrCalendarUnavailable, err)
	}
	return events, nil
}

func (c *Coordinator) notify(ctx context.Context, notice notify.BookingNotice) bool {
	if c.notifier == nil {
		return false
	}
	began := time.Now()
	err := c.notifier.NotifyBooking(ctx, notice)
	c.metrics.ObserveExternalCall("email", err, time.Since(began).Seconds())
	if err != nil {
		c.logger.Warn("booking stands without notification", "event_ref", notice.EventRef, "error", err)
		return false
	}
	return true
}

// CheckAvailability answers "is this slot probably free" for the UI. It may
// serve a cached answer and is never used to decide a booking.
func (c *Coordinator) CheckAvailability(ctx context.Context, date, clock string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "scheduling.check_availability")
	defer span.End()

	start, err := c.hours.Validate(date, clock)
	if err != nil {
		return false, err
	}
	date, clock = start.Format(DateLayout), start.Format(TimeLayout)
	if available, ok := c.cache.Lookup(date, clock); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return available, nil
	}
	end := start.Add(c.duration)
	events, err := c.listEvents(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	available := true
	for _, ev := range events {
		if ev.Overlaps(start, end) {
			available = false
			break
		}
	}
	c.cache.Store(date, clock, available)
	return available, nil
}

func bookingDescription(req AppointmentRequest) string {
	symptom := strings.TrimSpace(req.Symptom)
	if symptom == "" {
		symptom = "No indicado"
	}
	return fmt.Sprintf("Teléfono: %s\nMotivo de consulta: %s", strings.TrimSpace(req.Phone), symptom)
}
