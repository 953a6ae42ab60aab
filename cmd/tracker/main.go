package main

import (
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amazon-price-tracker/config"
	"amazon-price-tracker/internal/alert"
	"amazon-price-tracker/internal/database"
	"amazon-price-tracker/internal/lifecycle"
	"amazon-price-tracker/internal/monitor"
	"amazon-price-tracker/internal/notify"
	"amazon-price-tracker/internal/recall"
	"amazon-price-tracker/internal/scraper"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	// Checks interrupted by the previous shutdown must become claimable
	// again.
	if err := db.ResetInProgressMarkers(); err != nil {
		log.Fatalf("Error resetting check markers: %v", err)
	}

	// Alert channels are optional; losing one never stops checking.
	var channels []notify.Notifier
	if cfg.MailConfigured() {
		mailer, err := notify.NewMailer(cfg.EmailAddress, cfg.EmailPassword, cfg.SMTPServer, cfg.SMTPPort)
		if err != nil {
			log.Printf("ConfigurationError: mail disabled: %v", err)
		} else {
			channels = append(channels, mailer)
		}
	}
	if cfg.TelegramConfigured() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("ConfigurationError: telegram disabled: %v", err)
		} else {
			channels = append(channels, tg)
		}
	}
	if len(channels) == 0 {
		log.Println("ConfigurationError: no alert channel configured, alerts will only be logged")
	}
	fanout := notify.NewFanout(channels...)

	registry := scraper.NewRegistry()
	deduper := alert.NewDeduper(db)

	policy := monitor.RandomWindow(cfg.CheckWindowMin, cfg.CheckWindowMax,
		rand.NewSource(time.Now().UnixNano()))
	mon := monitor.New(db, registry, deduper, fanout, policy,
		cfg.SweepTick, cfg.FetchSpacing, cfg.Workers)
	go mon.Start()

	archiver := lifecycle.NewManager(db, cfg.LifecycleEvery)
	go archiver.Start()

	recalls := recall.NewMatcher(db, deduper, fanout, cfg.RecallScanEvery,
		recall.NewCPSCClient(), recall.NewFDAClient())
	go recalls.Start()

	log.Println("Price tracker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	mon.Stop()
	recalls.Stop()
	archiver.Stop()
}
