package memory

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

// ReservationRepo keeps reservations in process memory with the same
// uniqueness rules as the postgres schema.
type ReservationRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.Reservation
	byCode map[string]int
}

func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{byCode: make(map[string]int)}
}

func (r *ReservationRepo) FindConfirmedByDate(ctx context.Context, date time.Time) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i, ok := r.confirmedOn(date); ok {
		out := r.rows[i]
		return &out, nil
	}
	return nil, nil
}

func (r *ReservationRepo) FindByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byCode[code]
	if !ok {
		return nil, nil
	}
	out := r.rows[i]
	return &out, nil
}

func (r *ReservationRepo) ListByAttendee(ctx context.Context, attendee string) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Reservation
	for _, row := range r.rows {
		if row.Attendee == attendee {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *ReservationRepo) Insert(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[res.Code]; ok {
		return domain.Reservation{}, store.ErrCodeTaken
	}
	if res.Status == "" {
		res.Status = domain.StatusConfirmed
	}
	if res.Status == domain.StatusConfirmed {
		if _, ok := r.confirmedOn(res.BookingDate); ok {
			return domain.Reservation{}, store.ErrSlotTaken
		}
	}

	r.nextID++
	res.ID = r.nextID
	res.BookingDate = domain.DateOf(res.BookingDate)
	if res.StartsAt.IsZero() {
		res.StartsAt = domain.AppointmentTime(res.BookingDate)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	r.byCode[res.Code] = len(r.rows)
	r.rows = append(r.rows, res)
	return res, nil
}

func (r *ReservationRepo) UpdateStatus(ctx context.Context, code string, from, to domain.Status) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byCode[code]
	if !ok || r.rows[i].Status != from {
		return 0, nil
	}
	if to == domain.StatusConfirmed {
		if _, taken := r.confirmedOn(r.rows[i].BookingDate); taken {
			return 0, store.ErrSlotTaken
		}
	}
	r.rows[i].Status = to
	return 1, nil
}

func (r *ReservationRepo) confirmedOn(date time.Time) (int, bool) {
	day := domain.DateOf(date)
	for i, row := range r.rows {
		if row.Status == domain.StatusConfirmed && row.BookingDate.Equal(day) {
			return i, true
		}
	}
	return 0, false
}
