package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

// BookInput is a request to reserve Date for Attendee. Only the calendar day
// of Date is used.
type BookInput struct {
	Date     time.Time
	Attendee string
}

// Book reserves the date for the attendee. A lost insert race or a code
// collision is retried with a fresh code, re-checking availability each time.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Reservation, error) {
	if in.Date.IsZero() {
		return domain.Reservation{}, validationError("date is required")
	}
	attendee := strings.TrimSpace(in.Attendee)
	if attendee == "" {
		return domain.Reservation{}, validationError("attendee is required")
	}
	date := domain.DateOf(in.Date)

	unlock := s.lockDate(domain.FormatDate(date))
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		r, err := s.tryBook(ctx, date, attendee)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, store.ErrCodeTaken) && !errors.Is(err, store.ErrSlotTaken) {
			return domain.Reservation{}, err
		}
		lastErr = err
	}
	return domain.Reservation{}, storageError("insert reservation", lastErr)
}

func (s *Service) tryBook(ctx context.Context, date time.Time, attendee string) (domain.Reservation, error) {
	existing, err := s.repo.FindConfirmedByDate(ctx, date)
	if err != nil {
		return domain.Reservation{}, storageError("find reservation by date", err)
	}
	if existing != nil {
		return domain.Reservation{}, ErrSlotUnavailable
	}
	if !s.calendar.IsBookable(date) {
		return domain.Reservation{}, ErrSlotUnavailable
	}

	saved, err := s.repo.Insert(ctx, domain.Reservation{
		Code:        s.newCode(),
		BookingDate: date,
		StartsAt:    domain.AppointmentTime(date),
		Attendee:    attendee,
		Status:      domain.StatusConfirmed,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrCodeTaken) || errors.Is(err, store.ErrSlotTaken) {
			return domain.Reservation{}, err
		}
		return domain.Reservation{}, storageError("insert reservation", err)
	}
	return saved, nil
}
