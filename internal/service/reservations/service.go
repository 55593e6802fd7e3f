package reservations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"slotbook/internal/clock"
	"slotbook/internal/domain"
	"slotbook/internal/notify"
	"slotbook/internal/store"
)

const (
	DefaultSearchHorizon      = 366
	DefaultMaxBookingAttempts = 3
)

// Publisher receives an event for every committed cancellation.
type Publisher interface {
	Publish(ctx context.Context, ev notify.Event) notify.Report
}

type Service struct {
	repo      store.ReservationRepository
	calendar  domain.Calendar
	publisher Publisher

	clock       clock.Clock
	horizon     int
	maxAttempts int
	newCode     func() string

	dateLocks *xsync.MapOf[string, *dateLock]
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSearchHorizon bounds how many consecutive rejected days AvailableDates
// walks past before giving up.
func WithSearchHorizon(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.horizon = days
		}
	}
}

func WithMaxBookingAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithCodeGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newCode = fn
		}
	}
}

func NewService(repo store.ReservationRepository, calendar domain.Calendar, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		calendar:    calendar,
		publisher:   publisher,
		clock:       clock.NewSystem(),
		horizon:     DefaultSearchHorizon,
		maxAttempts: DefaultMaxBookingAttempts,
		newCode:     NewConfirmationCode,
		dateLocks:   xsync.NewMapOf[string, *dateLock](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewConfirmationCode returns the first 8 hex characters of the SHA-256 of
// a random UUID.
func NewConfirmationCode() string {
	sum := sha256.Sum256([]byte(uuid.New().String()))
	return hex.EncodeToString(sum[:])[:8]
}

type dateLock struct {
	mu   sync.Mutex
	refs int
}

// lockDate serialises bookings for one calendar date within this process.
// The entry is dropped once the last holder or waiter releases it.
func (s *Service) lockDate(date string) func() {
	l, _ := s.dateLocks.Compute(date, func(l *dateLock, loaded bool) (*dateLock, bool) {
		if !loaded {
			l = &dateLock{}
		}
		l.refs++
		return l, false
	})
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.dateLocks.Compute(date, func(l *dateLock, loaded bool) (*dateLock, bool) {
			l.refs--
			return l, l.refs == 0
		})
	}
}
