package mail

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

var (
	ErrSMTPHostPortRequired = errors.New("mail: smtp host and port are required")
	ErrNoRecipients         = errors.New("mail: no recipients provided")
	ErrNoSender             = errors.New("mail: no sender provided")
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPConfig configures an SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is used when Message.From is empty.
	From string
	// Send replaces smtp.SendMail, mostly for tests.
	Send SendFunc
}

// SMTP is a Mail backed by net/smtp. Auth is PLAIN when credentials are set.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth
	send SendFunc
}

// NewSMTP validates cfg and returns an SMTP sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, ErrSMTPHostPortRequired
	}

	s := &SMTP{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
		send: cfg.Send,
	}
	if s.send == nil {
		s.send = smtp.SendMail
	}
	if cfg.Username != "" && cfg.Password != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

// Send composes msg as MIME and hands it to the relay.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to := msg.recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.from
	}
	if from == "" {
		return ErrNoSender
	}

	if err := s.send(s.addr, s.auth, from, to, compose(from, msg)); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

// Close is a no-op; every Send dials its own connection.
func (s *SMTP) Close() error { return nil }

func compose(from string, msg Message) []byte {
	var b strings.Builder

	header := func(k, v string) { b.WriteString(k + ": " + v + "\r\n") }
	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		header("Cc", strings.Join(msg.Cc, ", "))
	}
	header("Subject", msg.Subject)
	header("MIME-Version", "1.0")

	switch {
	case msg.HTMLBody == "":
		header("Content-Type", "text/plain; charset=UTF-8")
		b.WriteString("\r\n" + msg.TextBody)
	case msg.TextBody == "":
		header("Content-Type", "text/html; charset=UTF-8")
		b.WriteString("\r\n" + msg.HTMLBody)
	default:
		boundary := newBoundary()
		header("Content-Type", "multipart/alternative; boundary="+boundary)
		b.WriteString("\r\n")
		for _, part := range []struct{ typ, body string }{
			{"text/plain", msg.TextBody},
			{"text/html", msg.HTMLBody},
		} {
			b.WriteString("--" + boundary + "\r\n")
			b.WriteString("Content-Type: " + part.typ + "; charset=UTF-8\r\n\r\n")
			b.WriteString(part.body + "\r\n")
		}
		b.WriteString("--" + boundary + "--")
	}

	return []byte(b.String())
}

func newBoundary() string {
	var buf [12]byte
	_, _ = rand.Read(buf[:])
	return "sellerhub-" + hex.EncodeToString(buf[:])
}
