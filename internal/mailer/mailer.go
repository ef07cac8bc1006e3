package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"sync"
	"time"
)

// Sender delivers a single plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		to, s.From, subject, body,
	))

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	// smtp.SendMail has no context support; run it aside so the deadline is honoured.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail via %s: %w", s.Host, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	slog.InfoContext(ctx, "email_logged", "to", to, "subject", subject, "body", body)
	return nil
}

// Dispatcher sends confirmation codes in the background so signup never waits
// on the mail server. Failures are logged and dropped.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout}
}

func (d *Dispatcher) SendConfirmationCode(email, username, code string) {
	subject := "Your confirmation code"
	body := fmt.Sprintf("Hello %s,\n\nUse this code to obtain your access token:\n\n%s\n", username, code)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, email, subject, body); err != nil {
			slog.Error("confirmation_email_failed", "username", username, "error", err)
			return
		}
		slog.Debug("confirmation_email_sent", "username", username)
	}()
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
