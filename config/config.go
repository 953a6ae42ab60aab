package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the static application configuration. Runtime-tunable
// settings (global thresholds, archive window) live in the database
// settings table instead.
type Config struct {
	DatabasePath string

	// Check scheduling
	CheckWindowMin time.Duration // lower bound of the randomized recheck interval
	CheckWindowMax time.Duration // upper bound of the randomized recheck interval
	SweepTick      time.Duration // how often the due-selection sweep runs
	Workers        int           // concurrent fetches
	FetchSpacing   time.Duration // minimum spacing between outbound fetches

	// Daily cadences
	RecallScanEvery time.Duration
	LifecycleEvery  time.Duration

	// Mail alerts (optional; missing credentials disable the mailer,
	// never price checking)
	EmailAddress  string
	EmailPassword string
	SMTPServer    string
	SMTPPort      int

	// Telegram alerts (optional)
	TelegramBotToken string
	TelegramChatID   int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:    "./tracker.db",
		CheckWindowMin:  2 * time.Hour,
		CheckWindowMax:  4 * time.Hour,
		SweepTick:       time.Minute,
		Workers:         2,
		FetchSpacing:    5 * time.Second,
		RecallScanEvery: 24 * time.Hour,
		LifecycleEvery:  24 * time.Hour,
		SMTPServer:      "smtp.gmail.com",
		SMTPPort:        587,
	}

	if path := os.Getenv("DATABASE_PATH"); path != "" {
		cfg.DatabasePath = path
	}

	if v := os.Getenv("CHECK_WINDOW_MIN_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.CheckWindowMin = time.Duration(parsed) * time.Minute
		}
	}
	if v := os.Getenv("CHECK_WINDOW_MAX_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.CheckWindowMax = time.Duration(parsed) * time.Minute
		}
	}
	if cfg.CheckWindowMax <= cfg.CheckWindowMin {
		return nil, fmt.Errorf("CHECK_WINDOW_MAX_MINUTES must be greater than CHECK_WINDOW_MIN_MINUTES")
	}

	if v := os.Getenv("CHECK_WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Workers = parsed
		}
	}
	if v := os.Getenv("FETCH_SPACING_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.FetchSpacing = time.Duration(parsed) * time.Second
		}
	}

	cfg.EmailAddress = os.Getenv("EMAIL_ADDRESS")
	cfg.EmailPassword = os.Getenv("EMAIL_PASSWORD")
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.SMTPServer = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.SMTPPort = parsed
		}
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if chatID, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = chatID
		}
	}

	return cfg, nil
}

// MailConfigured reports whether the SMTP credentials are complete.
func (c *Config) MailConfigured() bool {
	return c.EmailAddress != "" && c.EmailPassword != ""
}

// TelegramConfigured reports whether the Telegram credentials are complete.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
