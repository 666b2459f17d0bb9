// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"townsquare/internal/config"
	"townsquare/internal/middleware"
)

// Mailer delivers plain-text mail. A zero-config mailer is disabled and
// drops messages with a log line, so callers can degrade gracefully.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Message is one outgoing email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// NewMailer builds a Mailer from configuration.
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
		send: smtp.SendMail,
	}
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.from != ""
}

// Send delivers the message synchronously.
func (m *Mailer) Send(_ context.Context, msg Message) error {
	if !m.Enabled() {
		middleware.MailDeliveries.WithLabelValues("skipped").Inc()
		middleware.Logger.Info("Mail delivery skipped, SMTP not configured",
			slog.String("subject", msg.Subject))
		return nil
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	payload := strings.Join([]string{
		"From: " + m.from,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		msg.Body,
	}, "\r\n")

	addr := m.host + ":" + m.port
	if err := m.send(addr, auth, m.from, msg.To, []byte(payload)); err != nil {
		middleware.MailDeliveries.WithLabelValues("error").Inc()
		return fmt.Errorf("mail: send failed: %w", err)
	}

	middleware.MailDeliveries.WithLabelValues("sent").Inc()
	return nil
}

// SendAsync delivers in the background, logging failures instead of
// returning them. Used where mail must never block the request.
func (m *Mailer) SendAsync(ctx context.Context, msg Message) {
	go func() {
		if err := m.Send(ctx, msg); err != nil {
			middleware.Logger.Error("Async mail delivery failed",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()))
		}
	}()
}
