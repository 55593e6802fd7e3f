package holidays

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"slotbook/internal/domain"
)

// Source serves the current holiday set. It is safe for concurrent use; a
// reload swaps the whole set at once.
type Source struct {
	static []time.Time
	file   string
	log    *slog.Logger

	current atomic.Pointer[domain.HolidaySet]
	cron    *cron.Cron
}

// New builds a source from fixed dates plus an optional file. The file may be
// YAML, JSON or TOML and lists dates under the "holidays" key.
func New(dates []string, file string, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}
	static, err := parseDates(dates)
	if err != nil {
		return nil, err
	}
	s := &Source{
		static: static,
		file:   strings.TrimSpace(file),
		log:    log.With(slog.String("component", "holidays")),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) IsHoliday(date time.Time) bool {
	return s.current.Load().IsHoliday(date)
}

func (s *Source) Len() int {
	return s.current.Load().Len()
}

// Reload re-reads the holiday file. On error the previous set stays active.
func (s *Source) Reload() error {
	dates := append([]time.Time(nil), s.static...)
	if s.file != "" {
		fromFile, err := readFile(s.file)
		if err != nil {
			return err
		}
		dates = append(dates, fromFile...)
	}

	set := domain.NewHolidaySet(dates...)
	s.current.Store(&set)
	s.log.Info("holidays loaded", slog.Int("count", set.Len()), slog.String("file", s.file))
	return nil
}

// StartReloader runs Reload on the given cron schedule. It does nothing when
// no file is configured.
func (s *Source) StartReloader(schedule string) error {
	if s.file == "" {
		return nil
	}
	if schedule == "" {
		schedule = "@daily"
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.Reload(); err != nil {
			s.log.Error("holiday reload failed", slog.Any("err", err), slog.String("file", s.file))
		}
	})
	if err != nil {
		return fmt.Errorf("holiday reload schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Info("holiday reloader started", slog.String("schedule", schedule))
	return nil
}

// Stop halts the reloader and waits for a running reload to finish.
func (s *Source) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func readFile(path string) ([]time.Time, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read holidays file %s: %w", path, err)
	}
	dates, err := parseDates(v.GetStringSlice("holidays"))
	if err != nil {
		return nil, fmt.Errorf("holidays file %s: %w", path, err)
	}
	return dates, nil
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		d, err := domain.ParseDate(r)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", r, err)
		}
		out = append(out, d)
	}
	return out, nil
}
