package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

const (
	uniqueViolation = "23505"

	constraintConfirmedDate = "reservations_confirmed_date_key"
	constraintCode          = "reservations_code_key"
)

type ReservationRepo struct {
	db *bun.DB
}

func NewReservationRepo(db *bun.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

func (r *ReservationRepo) FindConfirmedByDate(ctx context.Context, date time.Time) (*domain.Reservation, error) {
	return findConfirmedByDate(ctx, r.db, date)
}

func (r *ReservationRepo) FindByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	var row domain.Reservation
	err := r.db.NewSelect().
		Model(&row).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reservation by code: %w", err)
	}
	return &row, nil
}

func (r *ReservationRepo) ListByAttendee(ctx context.Context, attendee string) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	err := r.db.NewSelect().
		Model(&rows).
		Where("attendee = ?", attendee).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations by attendee: %w", err)
	}
	return rows, nil
}

// Insert serialises writers on the booking date with a transaction-scoped
// advisory lock; the partial unique index remains the final arbiter.
func (r *ReservationRepo) Insert(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	var out domain.Reservation
	err := r.InDateTransaction(ctx, res.BookingDate, func(ctx context.Context, tx bun.Tx) error {
		if res.Status == "" || res.Status == domain.StatusConfirmed {
			existing, err := findConfirmedByDate(ctx, tx, res.BookingDate)
			if err != nil {
				return err
			}
			if existing != nil {
				return store.ErrSlotTaken
			}
		}
		inserted, err := insertReservation(ctx, tx, res)
		if err != nil {
			return err
		}
		out = inserted
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return out, nil
}

func (r *ReservationRepo) UpdateStatus(ctx context.Context, code string, from, to domain.Status) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.Reservation)(nil)).
		Set("status = ?", to).
		Where("code = ?", code).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("update reservation status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *ReservationRepo) InDateTransaction(ctx context.Context, date time.Time, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBookingDate(ctx, tx, date); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func lockBookingDate(ctx context.Context, tx bun.Tx, date time.Time) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "reservation-date:"+domain.FormatDate(date)).Exec(ctx)
	return err
}

func findConfirmedByDate(ctx context.Context, db bun.IDB, date time.Time) (*domain.Reservation, error) {
	var row domain.Reservation
	err := db.NewSelect().
		Model(&row).
		Where("booking_date = ?::date", domain.FormatDate(date)).
		Where("status = ?", domain.StatusConfirmed).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find confirmed reservation by date: %w", err)
	}
	return &row, nil
}

func insertReservation(ctx context.Context, db bun.IDB, res domain.Reservation) (domain.Reservation, error) {
	m := domain.Reservation{
		Code:        res.Code,
		BookingDate: domain.DateOf(res.BookingDate),
		StartsAt:    res.StartsAt,
		Attendee:    res.Attendee,
		Status:      res.Status,
		CreatedAt:   res.CreatedAt,
	}

	_, err := db.NewInsert().
		Model(&m).
		ExcludeColumn("id").
		Value("booking_date", "?::date", domain.FormatDate(m.BookingDate)).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return domain.Reservation{}, mapped
		}
		return domain.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	return m, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintConfirmedDate:
		return store.ErrSlotTaken
	case constraintCode:
		return store.ErrCodeTaken
	}
	return nil
}
