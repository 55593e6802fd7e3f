package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.GRPCAddr() != "0.0.0.0:50051" {
		t.Fatalf("GRPCAddr = %q, want %q", cfg.GRPCAddr(), "0.0.0.0:50051")
	}
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if cfg.SearchHorizonDays != 366 || cfg.MaxBookingAttempts != 3 {
		t.Fatalf("booking = %d/%d, want 366/3", cfg.SearchHorizonDays, cfg.MaxBookingAttempts)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.SMSEnabled() {
		t.Fatalf("SMS should be disabled without credentials")
	}
	if len(cfg.Holidays) != 0 {
		t.Fatalf("Holidays = %v, want none", cfg.Holidays)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SLOTBOOK_GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("SLOTBOOK_STORE_DRIVER", "memory")
	t.Setenv("SLOTBOOK_CALENDAR_HOLIDAYS", "2025-12-25, 2026-01-01")
	t.Setenv("SLOTBOOK_BOOKING_MAX_ATTEMPTS", "5")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC1")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_FROM_NUMBER", "+15550000000")
	t.Setenv("SLOTBOOK_TWILIO_TO_NUMBER", "+15551111111")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GRPCAddr() != "127.0.0.1:6000" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	if cfg.StoreDriver != "memory" {
		t.Fatalf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if len(cfg.Holidays) != 2 || cfg.Holidays[1] != "2026-01-01" {
		t.Fatalf("Holidays = %v", cfg.Holidays)
	}
	if cfg.MaxBookingAttempts != 5 {
		t.Fatalf("MaxBookingAttempts = %d, want 5", cfg.MaxBookingAttempts)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/app" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if !cfg.SMSEnabled() {
		t.Fatalf("SMS should be enabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("duration", func(t *testing.T) {
		t.Setenv("SLOTBOOK_SHUTDOWN_TIMEOUT", "soon")
		if _, err := Load(); err == nil {
			t.Fatalf("expected duration error")
		}
	})
	t.Run("driver", func(t *testing.T) {
		t.Setenv("SLOTBOOK_STORE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected driver error")
		}
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore Chdir: %v", err)
		}
	})
}
