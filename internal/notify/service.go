package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/equilibra/pkg/logging"
)

// BookingNotice carries what the psychologist needs to follow up a new appointment.
type BookingNotice struct {
	Start    time.Time
	Phone    string
	Symptom  string
	EventRef string
}

// Service sends booking notifications to the psychologist.
type Service struct {
	email     EmailSender
	recipient string
	timeout   time.Duration
	logger    *logging.Logger
}

// NewService creates a notification service. A nil sender or empty recipient
// turns NotifyBooking into an error so callers can report the missed notice.
func NewService(email EmailSender, recipient string, timeout time.Duration, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		email:     email,
		recipient: strings.TrimSpace(recipient),
		timeout:   timeout,
		logger:    logger,
	}
}

// NotifyBooking emails the psychologist about a booked appointment.
func (s *Service) NotifyBooking(ctx context.Context, notice BookingNotice) error {
	if s.email == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	if s.recipient == "" {
		return fmt.Errorf("notify: psychologist email not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := BuildBookingEmail(s.recipient, notice)
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Warn("booking notification failed", "error", err, "event_ref", notice.EventRef)
		return err
	}
	return nil
}

// BuildBookingEmail renders the plain-text booking notice.
func BuildBookingEmail(to string, notice BookingNotice) EmailMessage {
	date := notice.Start.Format("2006-01-02")
	clock := notice.Start.Format("15:04")
	phone := notice.Phone
	if strings.TrimSpace(phone) == "" {
		phone = "No proporcionado"
	}
	symptom := notice.Symptom
	if strings.TrimSpace(symptom) == "" {
		symptom = "No indicado"
	}

	var b strings.Builder
	b.WriteString("Nueva cita agendada:\n\n")
	fmt.Fprintf(&b, "• Fecha: %s\n", date)
	fmt.Fprintf(&b, "• Hora: %s\n", clock)
	fmt.Fprintf(&b, "• Teléfono: %s\n", phone)
	fmt.Fprintf(&b, "\nSíntoma reportado:\n- %s\n", symptom)
	if notice.EventRef != "" {
		fmt.Fprintf(&b, "\nReferencia de calendario: %s\n", notice.EventRef)
	}

	return EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Nueva cita: %s %s", date, clock),
		Body:    b.String(),
	}
}
