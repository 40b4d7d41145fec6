package config

import (
	"testing"
	"time"
)

func TestParseMaintenanceEnd_RFC3339(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := ParseMaintenanceEnd("2025-06-02T08:30:00Z", now)
	want := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseMaintenanceEnd_DateOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := ParseMaintenanceEnd("2025-07-15", now)
	if got.Year() != 2025 || got.Month() != time.July || got.Day() != 15 {
		t.Errorf("expected 2025-07-15, got %v", got)
	}
}

func TestParseMaintenanceEnd_InvalidFallsBack(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{"not-a-date", "soon", "12/99/2025"} {
		got := ParseMaintenanceEnd(raw, now)
		want := now.Add(MaintenanceFallbackWindow)
		if !got.Equal(want) {
			t.Errorf("raw %q: expected fallback %v, got %v", raw, want, got)
		}
	}
}

func TestParseMaintenanceEnd_EmptyFallsBack(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := ParseMaintenanceEnd("", now)
	if !got.Equal(now.Add(MaintenanceFallbackWindow)) {
		t.Errorf("expected now+30m fallback, got %v", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.IdleTimeout != 30*time.Minute {
		t.Errorf("expected 30m idle timeout, got %v", cfg.IdleTimeout)
	}
	if cfg.ActivityThrottle != 60*time.Second {
		t.Errorf("expected 60s activity throttle, got %v", cfg.ActivityThrottle)
	}
	if cfg.PaymentPollEvery != 5*time.Second {
		t.Errorf("expected 5s payment poll interval, got %v", cfg.PaymentPollEvery)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoad_InvalidThrottle(t *testing.T) {
	t.Setenv("SESSION_ACTIVITY_THROTTLE_SEC", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero activity throttle")
	}
}

func TestLoad_ThrottleLongerThanTimeout(t *testing.T) {
	t.Setenv("SESSION_IDLE_MINUTES", "1")
	t.Setenv("SESSION_ACTIVITY_THROTTLE_SEC", "120")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when throttle exceeds idle timeout")
	}
}
