package reservations

import (
	"context"
	"time"

	"slotbook/internal/domain"
)

// AvailableDates returns the first n bookable, unreserved dates strictly
// after start, in ascending order. The walk gives up with ErrNoAvailability
// once it has rejected as many consecutive days as the search horizon.
func (s *Service) AvailableDates(ctx context.Context, start time.Time, n int) ([]time.Time, error) {
	if n < 1 {
		return nil, validationError("n must be at least 1")
	}
	if start.IsZero() {
		return nil, validationError("start date is required")
	}

	out := make([]time.Time, 0, min(n, 64))
	day := domain.DateOf(start)
	for rejected := 0; len(out) < n; {
		if rejected >= s.horizon {
			return nil, ErrNoAvailability
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day = domain.NextDay(day)
		existing, err := s.repo.FindConfirmedByDate(ctx, day)
		if err != nil {
			return nil, storageError("find reservation by date", err)
		}
		if existing != nil || !s.calendar.IsBookable(day) {
			rejected++
			continue
		}
		out = append(out, day)
		rejected = 0
	}
	return out, nil
}
