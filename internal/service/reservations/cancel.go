package reservations

import (
	"context"
	"strings"

	"slotbook/internal/domain"
	"slotbook/internal/notify"
)

// Cancel moves a confirmed reservation to CANCELLED and notifies subscribers
// once the change is stored. Unknown or already cancelled codes report false.
func (s *Service) Cancel(ctx context.Context, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}

	r, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return false, storageError("find reservation by code", err)
	}
	if r == nil || !r.Confirmed() {
		return false, nil
	}

	changed, err := s.repo.UpdateStatus(ctx, code, domain.StatusConfirmed, domain.StatusCancelled)
	if err != nil {
		return false, storageError("cancel reservation", err)
	}
	if changed != 1 {
		return false, nil
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, notify.Event{
			ConfirmationCode: r.Code,
			BookingDate:      domain.FormatDate(r.BookingDate),
			Attendee:         r.Attendee,
			CancelledAt:      s.clock.Now(),
		})
	}
	return true, nil
}

// Lookup lists every reservation of the attendee, in booking order.
func (s *Service) Lookup(ctx context.Context, attendee string) ([]domain.Reservation, error) {
	attendee = strings.TrimSpace(attendee)
	if attendee == "" {
		return nil, validationError("attendee is required")
	}

	out, err := s.repo.ListByAttendee(ctx, attendee)
	if err != nil {
		return nil, storageError("list reservations", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
