package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"slotbook/internal/domain"
	"slotbook/internal/service/reservations"
)

const maxAvailableDates = 4

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type availableDatesResponse struct {
	AvailableDates []string `json:"availableDates"`
}

func (h *Handler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := strconv.Atoi(q.Get("N"))
	if err != nil || n < 1 || n > maxAvailableDates {
		writeError(w, http.StatusBadRequest, codeInvalidN, "N must be between 1 and 4.")
		return
	}

	today := domain.DateOf(h.clock.Now())
	start := today
	if raw := q.Get("startDate"); raw != "" {
		if d, err := domain.ParseDate(raw); err == nil && !d.Before(today) {
			start = d
		}
	}

	dates, err := h.svc.AvailableDates(r.Context(), start, n)
	if err != nil {
		h.writeServiceError(w, "available dates failed", err)
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.FormatDate(d))
	}
	writeJSON(w, http.StatusOK, availableDatesResponse{AvailableDates: out})
}

type reserveRequest struct {
	DTSTART  string `json:"DTSTART"`
	ATTENDEE string `json:"ATTENDEE"`
}

type reserveResponse struct {
	ConfirmationCode string `json:"confirmationCode"`
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	if !datePattern.MatchString(req.DTSTART) {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}
	date, err := domain.ParseDate(req.DTSTART)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}
	if !date.After(domain.DateOf(h.clock.Now())) {
		writeError(w, http.StatusBadRequest, codeDateInPast, "Date is in the past. Please choose a future date.")
		return
	}
	if !domain.ValidEmail(req.ATTENDEE) {
		writeError(w, http.StatusBadRequest, codeInvalidEmail, "Invalid email address. Please enter a valid email.")
		return
	}

	res, err := h.svc.Book(r.Context(), reservations.BookInput{Date: date, Attendee: req.ATTENDEE})
	if err != nil {
		h.writeServiceError(w, "reservation failed", err, slog.String("date", req.DTSTART))
		return
	}

	h.log.Info(
		"reservation created",
		slog.String("confirmation_code", res.Code),
		slog.String("date", domain.FormatDate(res.BookingDate)),
	)
	writeJSON(w, http.StatusOK, reserveResponse{ConfirmationCode: res.Code})
}

type reservationView struct {
	ID               int64  `json:"id"`
	ConfirmationCode string `json:"confirmationCode"`
	DTSTART          string `json:"DTSTART"`
	StartsAt         string `json:"startsAt"`
	ATTENDEE         string `json:"ATTENDEE"`
	STATUS           string `json:"STATUS"`
	DTSTAMP          string `json:"DTSTAMP"`
}

type reservationsResponse struct {
	Reservations []reservationView `json:"reservations"`
}

func (h *Handler) LookupReservations(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if !domain.ValidEmail(email) {
		writeError(w, http.StatusBadRequest, codeInvalidEmail, "Invalid email address. Please enter a valid email.")
		return
	}

	list, err := h.svc.Lookup(r.Context(), email)
	if err != nil {
		h.writeServiceError(w, "reservation lookup failed", err)
		return
	}

	out := make([]reservationView, 0, len(list))
	for _, res := range list {
		out = append(out, reservationView{
			ID:               res.ID,
			ConfirmationCode: res.Code,
			DTSTART:          domain.FormatDate(res.BookingDate),
			StartsAt:         res.StartsAt.UTC().Format(time.RFC3339),
			ATTENDEE:         res.Attendee,
			STATUS:           string(res.Status),
			DTSTAMP:          res.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, reservationsResponse{Reservations: out})
}

type cancelRequest struct {
	ConfirmationCode string `json:"confirmationCode"`
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	ok, err := h.svc.Cancel(r.Context(), req.ConfirmationCode)
	if err != nil {
		h.writeServiceError(w, "cancellation failed", err, slog.String("confirmation_code", req.ConfirmationCode))
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, codeReservationNotFound, "Confirmation code not found.")
		return
	}

	h.log.Info("reservation cancelled", slog.String("confirmation_code", req.ConfirmationCode))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Reservation cancelled successfully."})
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	var vErr *reservations.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, codeInvalidInput, vErr.Error())
	case errors.Is(err, reservations.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, codeSlotUnavailable, "The date is not available for reservation. Please try a different date.")
	case errors.Is(err, reservations.ErrNotFound):
		writeError(w, http.StatusNotFound, codeReservationNotFound, "No reservations found for the specified email.")
	case errors.Is(err, reservations.ErrNoAvailability):
		writeError(w, http.StatusNotFound, codeNoAvailability, "No available dates found. Please try a later start date.")
	default:
		h.log.Error(msg, append([]any{slog.Any("err", err)}, attrs...)...)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
