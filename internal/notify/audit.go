package notify

import (
	"context"
	"log/slog"
)

// AuditLogger records every cancellation in the structured log.
func AuditLogger(log *slog.Logger) Subscriber {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "notify.audit"))
	return SubscriberFunc(func(ctx context.Context, ev Event) error {
		log.InfoContext(ctx,
			"reservation cancelled",
			slog.String("confirmation_code", ev.ConfirmationCode),
			slog.String("booking_date", ev.BookingDate),
			slog.String("attendee", ev.Attendee),
			slog.Time("cancelled_at", ev.CancelledAt),
		)
		return nil
	})
}
