package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/multierr"
)

// Event is delivered to every subscriber after a reservation has been
// cancelled and the change is committed.
type Event struct {
	ConfirmationCode string    `json:"confirmationCode"`
	BookingDate      string    `json:"bookingDate,omitempty"`
	Attendee         string    `json:"attendee,omitempty"`
	CancelledAt      time.Time `json:"cancelledAt"`
}

type Subscriber interface {
	Notify(ctx context.Context, ev Event) error
}

type SubscriberFunc func(ctx context.Context, ev Event) error

func (f SubscriberFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

type registration struct {
	name string
	sub  Subscriber
}

// Hub fans cancellation events out to its subscribers.
//
// Subscribe is meant for process startup only; the registry is read without
// locking while events are published.
type Hub struct {
	subs []registration
	log  *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log.With(slog.String("component", "notify.hub"))}
}

func (h *Hub) Subscribe(name string, sub Subscriber) {
	h.subs = append(h.subs, registration{name: name, sub: sub})
}

func (h *Hub) Subscribers() []string {
	out := make([]string, 0, len(h.subs))
	for _, r := range h.subs {
		out = append(out, r.name)
	}
	return out
}

// Report summarises one fan-out.
type Report struct {
	Delivered int
	Failed    []string
	Err       error
}

// Publish calls every subscriber in registration order. A failing or
// panicking subscriber is logged and recorded; the remaining ones still run.
func (h *Hub) Publish(ctx context.Context, ev Event) Report {
	var rep Report
	for _, r := range h.subs {
		err := deliver(ctx, r.sub, ev)
		if err != nil {
			h.log.Error(
				"subscriber failed",
				slog.String("subscriber", r.name),
				slog.String("confirmation_code", ev.ConfirmationCode),
				slog.Any("err", err),
			)
			rep.Failed = append(rep.Failed, r.name)
			rep.Err = multierr.Append(rep.Err, fmt.Errorf("%s: %w", r.name, err))
			continue
		}
		rep.Delivered++
	}
	return rep
}

func deliver(ctx context.Context, sub Subscriber, ev Event) (err error) {
	var pc panics.Catcher
	pc.Try(func() {
		err = sub.Notify(ctx, ev)
	})
	if rec := pc.Recovered(); rec != nil {
		return rec.AsError()
	}
	return err
}
