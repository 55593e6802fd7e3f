package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailSender is the part of the SendGrid client the email subscriber uses.
type MailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

func NewSendGridClient(apiKey string) MailSender {
	return sendgrid.NewSendClient(apiKey)
}

// RecipientFunc resolves the address to notify at delivery time, so updated
// recipients take effect without a restart.
type RecipientFunc func(ctx context.Context) (string, error)

type EmailConfig struct {
	FromEmail string
	FromName  string
}

// Email notifies one staff role (doctor, secretary) about a cancellation.
type Email struct {
	client MailSender
	from   *mail.Email
	role   string
	to     RecipientFunc
	log    *slog.Logger
}

func NewEmail(client MailSender, cfg EmailConfig, role string, to RecipientFunc, log *slog.Logger) *Email {
	if log == nil {
		log = slog.Default()
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Slotbook"
	}
	return &Email{
		client: client,
		from:   mail.NewEmail(fromName, cfg.FromEmail),
		role:   role,
		to:     to,
		log:    log.With(slog.String("component", "notify.email"), slog.String("role", role)),
	}
}

func (e *Email) Notify(ctx context.Context, ev Event) error {
	addr, err := e.to(ctx)
	if err != nil {
		return fmt.Errorf("resolve %s recipient: %w", e.role, err)
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		e.log.Warn("no recipient configured; skipping", slog.String("confirmation_code", ev.ConfirmationCode))
		return nil
	}

	subject, plain, htmlBody := cancellationMessage(ev)
	msg := mail.NewSingleEmail(e.from, subject, mail.NewEmail(e.role, addr), plain, htmlBody)

	resp, err := e.client.Send(msg)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", e.role, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	e.log.Info(
		"cancellation email sent",
		slog.String("confirmation_code", ev.ConfirmationCode),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}

func cancellationMessage(ev Event) (subject, plain, htmlBody string) {
	subject = "Reservation cancelled - Code: " + ev.ConfirmationCode

	var b strings.Builder
	b.WriteString("A reservation has been cancelled.\n\n")
	fmt.Fprintf(&b, "Confirmation code: %s\n", ev.ConfirmationCode)
	if ev.BookingDate != "" {
		fmt.Fprintf(&b, "Date: %s\n", ev.BookingDate)
	}
	if ev.Attendee != "" {
		fmt.Fprintf(&b, "Attendee: %s\n", ev.Attendee)
	}
	plain = b.String()

	htmlBody = "<p>A reservation has been cancelled.</p><pre>" + html.EscapeString(plain) + "</pre>"
	return subject, plain, htmlBody
}
