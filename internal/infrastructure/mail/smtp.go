// Package mail provides the SMTP implementation of ports.MailSender.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Config captures the settings for the outbound SMTP transport.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string // From address on outgoing mail
}

// SMTPSender sends HTML mail over plain SMTP with AUTH PLAIN.
type SMTPSender struct {
	cfg Config
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers a single mail. net/smtp has no context support, so the dial
// and exchange run in a goroutine and the caller's context bounds the wait.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	msg := s.buildMessage(to, subject, body)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.Sender, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	}
}

func (s *SMTPSender) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
