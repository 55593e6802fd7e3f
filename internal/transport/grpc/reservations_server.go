package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slotbook/internal/clock"
	"slotbook/internal/domain"
	"slotbook/internal/service/reservations"
)

const maxAvailableDates = 4

type ReservationsServer struct {
	svc   reservationsService
	clock clock.Clock
	log   *slog.Logger
}

type reservationsService interface {
	AvailableDates(ctx context.Context, start time.Time, n int) ([]time.Time, error)
	Book(ctx context.Context, in reservations.BookInput) (domain.Reservation, error)
	Cancel(ctx context.Context, code string) (bool, error)
	Lookup(ctx context.Context, attendee string) ([]domain.Reservation, error)
}

func NewReservationsServer(svc reservationsService, clk clock.Clock, log *slog.Logger) *ReservationsServer {
	if log == nil {
		log = slog.Default()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &ReservationsServer{
		svc:   svc,
		clock: clk,
		log:   log.With(slog.String("component", "grpc.reservations")),
	}
}

func (s *ReservationsServer) GetAvailableDates(ctx context.Context, req *GetAvailableDatesRequest) (*GetAvailableDatesResponse, error) {
	log := s.log.With(slog.String("rpc", "GetAvailableDates"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.N < 1 || req.N > maxAvailableDates {
		log.Warn("invalid request", slog.String("reason", "n_out_of_range"), slog.Int("n", int(req.N)))
		return nil, status.Error(codes.InvalidArgument, "n must be between 1 and 4")
	}

	today := domain.DateOf(s.clock.Now())
	start := today
	if raw := strings.TrimSpace(req.StartDate); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "bad_start_date"), slog.String("start_date", raw))
			return nil, status.Error(codes.InvalidArgument, "start_date must be YYYY-MM-DD")
		}
		if d.After(today) {
			start = d
		}
	}

	dates, err := s.svc.AvailableDates(ctx, start, int(req.N))
	if err != nil {
		return nil, s.statusError(log, "available dates failed", err)
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.FormatDate(d))
	}

	log.Debug("available dates listed", slog.String("start_date", domain.FormatDate(start)), slog.Int("count", len(out)))

	return &GetAvailableDatesResponse{AvailableDates: out}, nil
}

func (s *ReservationsServer) CreateReservation(ctx context.Context, req *CreateReservationRequest) (*CreateReservationResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateReservation"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := domain.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.String("date", req.Date))
		return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD")
	}
	if !date.After(domain.DateOf(s.clock.Now())) {
		log.Warn("invalid request", slog.String("reason", "date_in_past"), slog.String("date", req.Date))
		return nil, status.Error(codes.InvalidArgument, "date must be in the future")
	}
	if !domain.ValidEmail(req.Attendee) {
		log.Warn("invalid request", slog.String("reason", "bad_attendee"))
		return nil, status.Error(codes.InvalidArgument, "attendee must be an email address")
	}

	res, err := s.svc.Book(ctx, reservations.BookInput{Date: date, Attendee: req.Attendee})
	if err != nil {
		return nil, s.statusError(log, "reservation create failed", err, slog.String("date", req.Date))
	}

	log.Info(
		"reservation created",
		slog.String("confirmation_code", res.Code),
		slog.String("date", domain.FormatDate(res.BookingDate)),
	)

	return &CreateReservationResponse{Reservation: toReservation(res)}, nil
}

func (s *ReservationsServer) CancelReservation(ctx context.Context, req *CancelReservationRequest) (*CancelReservationResponse, error) {
	log := s.log.With(slog.String("rpc", "CancelReservation"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	ok, err := s.svc.Cancel(ctx, req.ConfirmationCode)
	if err != nil {
		return nil, s.statusError(log, "reservation cancel failed", err, slog.String("confirmation_code", req.ConfirmationCode))
	}
	if !ok {
		log.Info("reservation not found", slog.String("confirmation_code", req.ConfirmationCode))
		return nil, status.Error(codes.NotFound, "confirmation code not found")
	}

	log.Info("reservation cancelled", slog.String("confirmation_code", req.ConfirmationCode))

	return &CancelReservationResponse{Cancelled: true}, nil
}

func (s *ReservationsServer) LookupReservations(ctx context.Context, req *LookupReservationsRequest) (*LookupReservationsResponse, error) {
	log := s.log.With(slog.String("rpc", "LookupReservations"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if !domain.ValidEmail(req.Attendee) {
		log.Warn("invalid request", slog.String("reason", "bad_attendee"))
		return nil, status.Error(codes.InvalidArgument, "attendee must be an email address")
	}

	list, err := s.svc.Lookup(ctx, req.Attendee)
	if err != nil {
		return nil, s.statusError(log, "reservation lookup failed", err)
	}

	out := make([]*Reservation, 0, len(list))
	for _, r := range list {
		out = append(out, toReservation(r))
	}

	log.Debug("reservations listed", slog.Int("count", len(out)))

	return &LookupReservationsResponse{Reservations: out}, nil
}

func (s *ReservationsServer) statusError(log *slog.Logger, msg string, err error, attrs ...any) error {
	var vErr *reservations.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, reservations.ErrSlotUnavailable):
		log.Info("slot unavailable", attrs...)
		return status.Error(codes.FailedPrecondition, "The date is not available for reservation. Please try a different date.")
	case errors.Is(err, reservations.ErrNotFound):
		return status.Error(codes.NotFound, "no reservations found for the specified attendee")
	case errors.Is(err, reservations.ErrNoAvailability):
		log.Info("no availability within search horizon")
		return status.Error(codes.ResourceExhausted, "no available dates found")
	}
	log.Error(msg, append([]any{slog.Any("err", err)}, attrs...)...)
	return status.Error(codes.Internal, "internal error")
}

func toReservation(r domain.Reservation) *Reservation {
	return &Reservation{
		ID:               r.ID,
		ConfirmationCode: r.Code,
		Date:             domain.FormatDate(r.BookingDate),
		StartsAt:         r.StartsAt.UTC(),
		Attendee:         r.Attendee,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
	}
}
