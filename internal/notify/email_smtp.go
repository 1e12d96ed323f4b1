package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/equilibra/pkg/logging"
)

// SMTPConfig configures an implicit-TLS SMTP relay (port 465 style).
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPSender relays mail through an authenticated SMTP server.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *logging.Logger
	dial   func(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error)
}

// NewSMTPSender returns nil when credentials are missing.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.Username
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SMTPSender{cfg: cfg, logger: logger, dial: dialTLS}
}

func dialTLS(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error) {
	d := &tls.Dialer{Config: cfg}
	return d.DialContext(ctx, "tcp", addr)
}

// Send delivers a plain-text message. The context deadline bounds the whole exchange.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := s.dial(ctx, addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		s.logger.Error("smtp dial failed", "error", err, "addr", addr)
		return fmt.Errorf("notify: smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("notify: smtp handshake: %w", err)
	}
	defer client.Close()

	steps := []func() error{
		func() error { return client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)) },
		func() error { return client.Mail(s.cfg.FromEmail) },
		func() error { return client.Rcpt(msg.To) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			s.logger.Error("smtp send failed", "error", err, "to", msg.To)
			return fmt.Errorf("notify: smtp send: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify: smtp data: %w", err)
	}
	if _, err := w.Write(s.compose(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("notify: smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notify: smtp close data: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Warn("smtp quit failed", "error", err)
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *SMTPSender) compose(msg EmailMessage) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", addressHeader(s.cfg.FromName, s.cfg.FromEmail))
	fmt.Fprintf(&b, "To: %s\r\n", addressHeader(msg.ToName, msg.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// addressHeader formats "Name <addr>", Q-encoding non-ASCII names. A blank
// name yields the bare address.
func addressHeader(name, addr string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

var _ EmailSender = (*SMTPSender)(nil)
