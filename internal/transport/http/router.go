package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"slotbook/internal/clock"
	"slotbook/internal/domain"
	"slotbook/internal/recipients"
	"slotbook/internal/service/reservations"
)

type ReservationService interface {
	AvailableDates(ctx context.Context, start time.Time, n int) ([]time.Time, error)
	Book(ctx context.Context, in reservations.BookInput) (domain.Reservation, error)
	Cancel(ctx context.Context, code string) (bool, error)
	Lookup(ctx context.Context, attendee string) ([]domain.Reservation, error)
}

type RecipientUpdater interface {
	Update(ctx context.Context, r recipients.Recipients) error
}

type Handler struct {
	svc        ReservationService
	recipients RecipientUpdater
	clock      clock.Clock
	log        *slog.Logger
}

func NewHandler(svc ReservationService, rec RecipientUpdater, clk clock.Clock, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Handler{
		svc:        svc,
		recipients: rec,
		clock:      clk,
		log:        log.With(slog.String("component", "http.reservations")),
	}
}

// Router wires the REST routes with CORS, panic recovery and request logging.
func (h *Handler) Router(corsOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/available-dates", h.AvailableDates).Methods(http.MethodGet)
	api.HandleFunc("/reserve", h.Reserve).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{email}", h.LookupReservations).Methods(http.MethodGet)
	api.HandleFunc("/cancel-reservation", h.CancelReservation).Methods(http.MethodPost)
	api.HandleFunc("/update-emails", h.UpdateEmails).Methods(http.MethodPost)

	// Subrouters do not inherit the fallbacks of their parent.
	for _, rt := range []*mux.Router{r, api} {
		rt.NotFoundHandler = NotFoundHandler()
		rt.MethodNotAllowedHandler = MethodNotAllowedHandler()
	}

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	var handler http.Handler = r
	handler = handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: h.log}),
		handlers.PrintRecoveryStack(true),
	)(handler)
	return RequestLogger(handler, h.log)
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "This is an invalid route. Please check the URL and try again.")
	})
}

// MethodNotAllowedHandler returns a JSON 405 response for a known path hit
// with the wrong method.
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
