package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// AppointmentHour is the fixed time of day every booking starts at, in UTC.
const AppointmentHour = 9

type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Code        string    `bun:"code,notnull"`
	BookingDate time.Time `bun:"booking_date,type:date,notnull"`
	StartsAt    time.Time `bun:"starts_at,notnull"`
	Attendee    string    `bun:"attendee,notnull"`
	Status      Status    `bun:"status,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (r *Reservation) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		if r.Status == "" {
			r.Status = StatusConfirmed
		}
		if r.StartsAt.IsZero() && !r.BookingDate.IsZero() {
			r.StartsAt = AppointmentTime(r.BookingDate)
		}
	}
	return nil
}

func (r Reservation) Confirmed() bool {
	return r.Status == StatusConfirmed
}
