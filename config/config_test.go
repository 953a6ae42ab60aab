package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckWindowMin != 2*time.Hour || cfg.CheckWindowMax != 4*time.Hour {
		t.Errorf("check window = [%v, %v], want [2h, 4h]", cfg.CheckWindowMin, cfg.CheckWindowMax)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.MailConfigured() {
		t.Error("mail reported configured without credentials")
	}
	if cfg.TelegramConfigured() {
		t.Error("telegram reported configured without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHECK_WINDOW_MIN_MINUTES", "30")
	t.Setenv("CHECK_WINDOW_MAX_MINUTES", "90")
	t.Setenv("CHECK_WORKERS", "4")
	t.Setenv("DATABASE_PATH", "/tmp/alt.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckWindowMin != 30*time.Minute || cfg.CheckWindowMax != 90*time.Minute {
		t.Errorf("check window = [%v, %v]", cfg.CheckWindowMin, cfg.CheckWindowMax)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.DatabasePath != "/tmp/alt.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
}

func TestLoadRejectsInvertedWindow(t *testing.T) {
	t.Setenv("CHECK_WINDOW_MIN_MINUTES", "240")
	t.Setenv("CHECK_WINDOW_MAX_MINUTES", "120")

	if _, err := Load(); err == nil {
		t.Error("Load accepted max <= min")
	}
}

func TestMailConfigured(t *testing.T) {
	t.Setenv("EMAIL_ADDRESS", "alerts@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MailConfigured() {
		t.Error("mail not reported configured with full credentials")
	}
}
