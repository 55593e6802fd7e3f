package holidays

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"slotbook/internal/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNew_StaticDates(t *testing.T) {
	s, err := New([]string{"2025-12-25", " 2026-01-01 ", ""}, "", nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if !s.IsHoliday(mustDate(t, "2025-12-25")) {
		t.Fatalf("expected 2025-12-25 to be a holiday")
	}
	if s.IsHoliday(mustDate(t, "2025-12-26")) {
		t.Fatalf("expected 2025-12-26 to be a working day")
	}
}

func TestNew_InvalidDate(t *testing.T) {
	if _, err := New([]string{"25/12/2025"}, "", nil); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestReload_MergesFileAndSwaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	writeFile(t, path, "holidays:\n  - \"2025-05-01\"\n")

	s, err := New([]string{"2025-12-25"}, path, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !s.IsHoliday(mustDate(t, "2025-05-01")) || !s.IsHoliday(mustDate(t, "2025-12-25")) {
		t.Fatalf("expected file and static holidays to be merged")
	}

	writeFile(t, path, "holidays:\n  - \"2025-08-15\"\n")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if s.IsHoliday(mustDate(t, "2025-05-01")) {
		t.Fatalf("expected removed holiday to be gone after reload")
	}
	if !s.IsHoliday(mustDate(t, "2025-08-15")) {
		t.Fatalf("expected new holiday after reload")
	}
}

func TestReload_KeepsPreviousSetOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.json")
	writeFile(t, path, `{"holidays": ["2025-05-01"]}`)

	s, err := New(nil, path, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	writeFile(t, path, `{"holidays": ["not-a-date"]}`)
	if err := s.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if !s.IsHoliday(mustDate(t, "2025-05-01")) {
		t.Fatalf("expected previous set to remain active")
	}
}

func TestStartReloader(t *testing.T) {
	s, err := New(nil, "", nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := s.StartReloader("not a schedule"); err != nil {
		t.Fatalf("StartReloader without file should be a no-op, got %v", err)
	}
	s.Stop()

	path := filepath.Join(t.TempDir(), "holidays.yaml")
	writeFile(t, path, "holidays: []\n")
	s, err = New(nil, path, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := s.StartReloader("not a schedule"); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
	if err := s.StartReloader("@every 1h"); err != nil {
		t.Fatalf("StartReloader error: %v", err)
	}
	s.Stop()
}

func TestSource_SatisfiesCalendar(t *testing.T) {
	s, err := New([]string{"2025-03-10"}, "", nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	cal := domain.NewCalendar(s)
	if cal.IsBookable(mustDate(t, "2025-03-10")) {
		t.Fatalf("expected holiday to be unbookable")
	}
	if !cal.IsBookable(mustDate(t, "2025-03-11")) {
		t.Fatalf("expected 2025-03-11 to be bookable")
	}
}
