package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slotbook/internal/clock"
	"slotbook/internal/domain"
	"slotbook/internal/notify"
	"slotbook/internal/recipients"
	"slotbook/internal/service/reservations"
	"slotbook/internal/store/memory"
)

var now = time.Date(2025, 3, 7, 15, 0, 0, 0, time.UTC)

type stubRecipients struct {
	updateFn func(ctx context.Context, r recipients.Recipients) error
}

func (s *stubRecipients) Update(ctx context.Context, r recipients.Recipients) error {
	if s.updateFn == nil {
		panic("Update not configured")
	}
	return s.updateFn(ctx, r)
}

type countingPublisher struct {
	events []notify.Event
}

func (p *countingPublisher) Publish(ctx context.Context, ev notify.Event) notify.Report {
	p.events = append(p.events, ev)
	return notify.Report{}
}

func newTestRouter(t *testing.T, rec RecipientUpdater) (http.Handler, *countingPublisher) {
	t.Helper()
	pub := &countingPublisher{}
	clk := clock.NewFixed(now)
	svc := reservations.NewService(memory.NewReservationRepo(), domain.NewCalendar(nil), pub, reservations.WithClock(clk))
	return NewHandler(svc, rec, clk, slog.Default()).Router(nil), pub
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAvailableDates(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedSubstr string
	}{
		{"future start", "/api/available-dates?startDate=2025-03-07&N=2", http.StatusOK, `{"availableDates":["2025-03-10","2025-03-11"]}`},
		{"missing start defaults to today", "/api/available-dates?N=1", http.StatusOK, `["2025-03-10"]`},
		{"past start defaults to today", "/api/available-dates?startDate=2024-01-01&N=1", http.StatusOK, `["2025-03-10"]`},
		{"garbage start defaults to today", "/api/available-dates?startDate=tomorrow&N=1", http.StatusOK, `["2025-03-10"]`},
		{"later start", "/api/available-dates?startDate=2025-03-11&N=1", http.StatusOK, `["2025-03-12"]`},
		{"n too large", "/api/available-dates?N=5", http.StatusBadRequest, `"code":"invalid_n"`},
		{"n zero", "/api/available-dates?N=0", http.StatusBadRequest, `"code":"invalid_n"`},
		{"n missing", "/api/available-dates", http.StatusBadRequest, "N must be between 1 and 4."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestReserve(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedSubstr string
	}{
		{"success", `{"DTSTART":"2025-03-10","ATTENDEE":"a@x.com"}`, http.StatusOK, `"confirmationCode":"`},
		{"already booked", `{"DTSTART":"2025-03-10","ATTENDEE":"b@x.com"}`, http.StatusConflict, `"code":"slot_unavailable"`},
		{"weekend", `{"DTSTART":"2025-03-08","ATTENDEE":"b@x.com"}`, http.StatusConflict, `"code":"slot_unavailable"`},
		{"bad format", `{"DTSTART":"10/03/2025","ATTENDEE":"a@x.com"}`, http.StatusBadRequest, `"code":"invalid_date"`},
		{"impossible date", `{"DTSTART":"2025-02-30","ATTENDEE":"a@x.com"}`, http.StatusBadRequest, `"code":"invalid_date"`},
		{"past", `{"DTSTART":"2025-03-03","ATTENDEE":"a@x.com"}`, http.StatusBadRequest, `"code":"date_in_past"`},
		{"today", `{"DTSTART":"2025-03-07","ATTENDEE":"a@x.com"}`, http.StatusBadRequest, `"code":"date_in_past"`},
		{"bad email", `{"DTSTART":"2025-03-11","ATTENDEE":"nobody"}`, http.StatusBadRequest, `"code":"invalid_email"`},
		{"invalid json", `{"DTSTART":`, http.StatusBadRequest, `"code":"invalid_request_body"`},
	}
	// Cases share one store, so order matters.
	for _, tt := range tests {
		rec := do(t, h, http.MethodPost, "/api/reserve", tt.body)
		if rec.Code != tt.expectedStatus {
			t.Fatalf("%s: expected status %d, got %d: %s", tt.name, tt.expectedStatus, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
			t.Fatalf("%s: expected response to contain %q, got %q", tt.name, tt.expectedSubstr, rec.Body.String())
		}
	}
}

func TestLookupAndCancelFlow(t *testing.T) {
	h, pub := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/reserve", `{"DTSTART":"2025-03-10","ATTENDEE":"a@x.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reserve status = %d: %s", rec.Code, rec.Body.String())
	}
	var booked reserveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &booked); err != nil {
		t.Fatalf("decode reserve: %v", err)
	}

	rec = do(t, h, http.MethodGet, "/api/reservations/a@x.com", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status = %d: %s", rec.Code, rec.Body.String())
	}
	var list reservationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode lookup: %v", err)
	}
	if len(list.Reservations) != 1 {
		t.Fatalf("reservations = %d, want 1", len(list.Reservations))
	}
	got := list.Reservations[0]
	if got.ConfirmationCode != booked.ConfirmationCode || got.DTSTART != "2025-03-10" || got.STATUS != "CONFIRMED" {
		t.Fatalf("reservation = %+v", got)
	}
	if got.StartsAt != "2025-03-10T09:00:00Z" {
		t.Fatalf("startsAt = %q, want 2025-03-10T09:00:00Z", got.StartsAt)
	}

	body := `{"confirmationCode":"` + booked.ConfirmationCode + `"}`
	if rec = do(t, h, http.MethodPost, "/api/cancel-reservation", body); rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/api/cancel-reservation", body)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Confirmation code not found.") {
		t.Fatalf("second cancel = %d %s, want 404", rec.Code, rec.Body.String())
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}

	if rec = do(t, h, http.MethodGet, "/api/reservations/b@x.com", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown attendee status = %d, want 404", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, "/api/reservations/not-an-email", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d, want 400", rec.Code)
	}
}

type stubService struct {
	err error
}

func (s *stubService) AvailableDates(ctx context.Context, start time.Time, n int) ([]time.Time, error) {
	return nil, s.err
}

func (s *stubService) Book(ctx context.Context, in reservations.BookInput) (domain.Reservation, error) {
	return domain.Reservation{}, s.err
}

func (s *stubService) Cancel(ctx context.Context, code string) (bool, error) {
	return false, s.err
}

func (s *stubService) Lookup(ctx context.Context, attendee string) ([]domain.Reservation, error) {
	return nil, s.err
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"storage", &reservations.StorageError{Op: "insert reservation", Err: errors.New("boom")}, http.StatusInternalServerError, codeInternalError},
		{"no availability", reservations.ErrNoAvailability, http.StatusNotFound, codeNoAvailability},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubService{err: tt.err}, nil, clock.NewFixed(now), slog.Default()).Router(nil)
			rec := do(t, h, http.MethodGet, "/api/available-dates?N=1", "")
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != tt.expectedCode {
				t.Fatalf("code = %q, want %q", body.Code, tt.expectedCode)
			}
		})
	}

	h := NewHandler(&stubService{err: errors.New("db down")}, nil, clock.NewFixed(now), slog.Default()).Router(nil)
	if rec := do(t, h, http.MethodPost, "/api/cancel-reservation", `{"confirmationCode":"abcd1234"}`); rec.Code != http.StatusInternalServerError {
		t.Fatalf("cancel storage failure status = %d, want 500", rec.Code)
	}
}

func TestUpdateEmails(t *testing.T) {
	var saved recipients.Recipients
	store := &stubRecipients{updateFn: func(ctx context.Context, r recipients.Recipients) error {
		if r.DoctorEmail == "fail@x.com" {
			return errors.New("disk full")
		}
		if r.DoctorEmail == "bad" {
			return &recipients.ValidationError{}
		}
		saved = r
		return nil
	}}
	h, _ := newTestRouter(t, store)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"success", `{"doctorEmail":"doc@x.com","secretaryEmail":"desk@x.com"}`, http.StatusOK},
		{"missing", `{"doctorEmail":"doc@x.com"}`, http.StatusBadRequest},
		{"invalid", `{"doctorEmail":"bad","secretaryEmail":"desk@x.com"}`, http.StatusBadRequest},
		{"storage", `{"doctorEmail":"fail@x.com","secretaryEmail":"desk@x.com"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/update-emails", tt.body)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
	if saved.DoctorEmail != "doc@x.com" || saved.SecretaryEmail != "desk@x.com" {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestRouterFallbacks(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), `"code":"not_found"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	for _, path := range []string{"/api/reserve", "/api/cancel-reservation", "/api/update-emails"} {
		rec = do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s status = %d, want 405", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"method_not_allowed"`) {
			t.Fatalf("GET %s body = %s", path, rec.Body.String())
		}
	}
	if rec = do(t, h, http.MethodPost, "/api/available-dates", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST available-dates status = %d, want 405", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouterCORSAndRecovery(t *testing.T) {
	h := NewHandler(&panicService{}, nil, clock.NewFixed(now), slog.Default()).Router([]string{"https://clinic.test"})

	req := httptest.NewRequest(http.MethodGet, "/api/available-dates?N=1", nil)
	req.Header.Set("Origin", "https://clinic.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("panic status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://clinic.test" {
		t.Fatalf("allow origin = %q", got)
	}
}

type panicService struct {
	stubService
}

func (p *panicService) AvailableDates(ctx context.Context, start time.Time, n int) ([]time.Time, error) {
	panic("unexpected nil calendar")
}
