package store

import (
	"context"
	"time"

	"slotbook/internal/domain"
)

type ReservationRepository interface {
	FindConfirmedByDate(ctx context.Context, date time.Time) (*domain.Reservation, error)
	FindByCode(ctx context.Context, code string) (*domain.Reservation, error)
	ListByAttendee(ctx context.Context, attendee string) ([]domain.Reservation, error)
	Insert(ctx context.Context, r domain.Reservation) (domain.Reservation, error)
	UpdateStatus(ctx context.Context, code string, from, to domain.Status) (int64, error)
}
