// Package monitor drives the periodic price checks: due selection,
// bounded fetching, and the classify→dedupe→notify pipeline.
package monitor

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"amazon-price-tracker/internal/alert"
	"amazon-price-tracker/internal/classify"
	"amazon-price-tracker/internal/database"
	"amazon-price-tracker/internal/models"
	"amazon-price-tracker/internal/notify"
	"amazon-price-tracker/internal/scraper"
	"amazon-price-tracker/internal/threshold"
)

// Monitor owns the sweep loop and the fetch worker pool.
type Monitor struct {
	db       *database.DB
	registry *scraper.Registry
	deduper  *alert.Deduper
	fanout   *notify.Fanout
	policy   IntervalPolicy
	limiter  *rate.Limiter
	tick     time.Duration
	locks    *lockTable

	jobs chan models.Product
	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a monitor. fetchSpacing is the minimum gap between
// outbound checks across all workers, so the pool can never burst in a
// way the upstream would read as a bot.
func New(db *database.DB, registry *scraper.Registry, deduper *alert.Deduper,
	fanout *notify.Fanout, policy IntervalPolicy, tick, fetchSpacing time.Duration, workers int) *Monitor {

	m := &Monitor{
		db:       db,
		registry: registry,
		deduper:  deduper,
		fanout:   fanout,
		policy:   policy,
		limiter:  rate.NewLimiter(rate.Every(fetchSpacing), 1),
		tick:     tick,
		locks:    newLockTable(),
		jobs:     make(chan models.Product, 64),
		quit:     make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Start runs the sweep loop until Stop is called. Blocks; run it in a
// goroutine.
func (m *Monitor) Start() {
	log.Printf("Monitor started, sweeping every %v", m.tick)
	m.Sweep()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.quit:
			return
		}
	}
}

// Stop shuts the sweep and workers down. In-flight checks finish;
// their markers are cleared by the normal completion path (or by the
// startup reset after a crash).
func (m *Monitor) Stop() {
	close(m.quit)
	m.wg.Wait()
}

// Sweep selects every due product, claims its in-progress marker, and
// queues it for a worker. A product whose marker is already set is
// skipped, so interleaved sweeps can never double-dispatch.
func (m *Monitor) Sweep() {
	due, err := m.db.DueProducts(time.Now())
	if err != nil {
		log.Printf("Sweep: selecting due products: %v", err)
		return
	}
	for _, p := range due {
		claimed, err := m.db.ClaimCheck(p.ASIN)
		if err != nil {
			log.Printf("Sweep: claiming %s: %v", p.ASIN, err)
			continue
		}
		if !claimed {
			continue
		}
		select {
		case m.jobs <- p:
		case <-m.quit:
			// Shutting down; release the claim so the product is not
			// stuck until the next startup reset.
			if err := m.db.FinishCheck(p.ASIN, p.LastChecked, p.NextCheckDue); err != nil {
				log.Printf("Sweep: releasing claim on %s: %v", p.ASIN, err)
			}
			return
		}
	}
}

func (m *Monitor) worker() {
	defer m.wg.Done()
	for {
		select {
		case p := <-m.jobs:
			if err := m.limiter.Wait(context.Background()); err != nil {
				return
			}
			m.checkProduct(context.Background(), p)
		case <-m.quit:
			return
		}
	}
}

// checkProduct runs one full check. Every exit path clears the
// in-progress marker and advances the schedule; a failed fetch follows
// the same randomized window as a successful one, never a tight retry.
func (m *Monitor) checkProduct(ctx context.Context, p models.Product) {
	now := time.Now()
	next := m.policy(now)

	finish := func() {
		if err := m.db.FinishCheck(p.ASIN, now, next); err != nil {
			log.Printf("[%s] Clearing check marker: %v", p.ASIN, err)
		}
	}

	s := m.registry.FindScraper(p.URL)
	if s == nil {
		log.Printf("[%s] No scraper handles URL %s", p.ASIN, p.URL)
		finish()
		return
	}

	result, err := s.Fetch(ctx, p.URL)
	if err != nil {
		if errors.Is(err, scraper.ErrBlocked) {
			log.Printf("[%s] Fetch blocked upstream; backing off until %s", p.ASIN, next.Format(time.Kitchen))
		} else {
			log.Printf("[%s] Fetch failed: %v", p.ASIN, err)
		}
		finish()
		return
	}

	lock := m.locks.get(p.ASIN)
	lock.Lock()
	defer lock.Unlock()

	fresh, err := m.db.GetProduct(p.ASIN)
	if err != nil || fresh == nil {
		log.Printf("[%s] Reloading product: %v", p.ASIN, err)
		finish()
		return
	}

	m.apply(fresh, result, now)
	finish()
}

// apply folds a successful fetch into product state and runs the alert
// pipeline. Caller holds the product lock.
func (m *Monitor) apply(p *models.Product, result *models.FetchResult, now time.Time) {
	if title := strings.TrimSpace(result.Title); title != "" {
		if p.HasPlaceholderTitle() || (!strings.EqualFold(title, p.Title) && len(title) >= 10) {
			if err := m.db.UpdateTitle(p.ASIN, title); err != nil {
				log.Printf("[%s] Updating title: %v", p.ASIN, err)
			} else {
				p.Title = title
			}
		}
	}

	snap := models.PriceSnapshot{
		ASIN:          p.ASIN,
		TakenAt:       now,
		NewPrice:      result.NewPrice,
		UsedPrice:     result.UsedPrice,
		Availability:  result.Availability,
		ScreenshotRef: result.ScreenshotRef,
	}
	if err := m.db.InsertSnapshot(snap); err != nil {
		log.Printf("[%s] Recording snapshot: %v", p.ASIN, err)
	}

	settings, err := m.db.GetSettings()
	if err != nil {
		log.Printf("[%s] Loading settings: %v", p.ASIN, err)
		return
	}
	eff := threshold.Resolve(p.Thresholds, settings.Global, settings.GlobalAlertsEnabled)

	m.evaluate(p, result.NewPrice, eff, models.PriceNew)
	m.evaluate(p, result.UsedPrice, eff, models.PriceUsed)

	// An absent price leaves the last known value as the baseline for
	// future delta comparisons.
	finalNew := result.NewPrice
	if finalNew == nil {
		finalNew = p.CurrentNewPrice
	}
	finalUsed := result.UsedPrice
	if finalUsed == nil {
		finalUsed = p.CurrentUsedPrice
	}
	changed := priceChanged(p.CurrentNewPrice, result.NewPrice) ||
		priceChanged(p.CurrentUsedPrice, result.UsedPrice)

	if err := m.db.UpdatePrices(p.ASIN, finalNew, finalUsed, result.Availability); err != nil {
		log.Printf("[%s] Updating prices: %v", p.ASIN, err)
		return
	}
	if changed {
		if err := m.db.TouchActivity(p.ASIN, now); err != nil {
			log.Printf("[%s] Touching activity: %v", p.ASIN, err)
		}
	}
}

// evaluate classifies one price kind and dispatches at most one alert:
// the highest-priority satisfied trigger that clears its dedup floor.
func (m *Monitor) evaluate(p *models.Product, observed *float64, eff threshold.Effective, kind models.PriceKind) {
	res := classify.Classify(p.Baseline(kind), observed, eff, kind)
	for _, trigger := range res.Triggers {
		approved, err := m.deduper.ApprovePrice(p.ASIN, trigger.Kind, trigger.Price)
		if err != nil {
			log.Printf("[%s] Dedup check for %s: %v", p.ASIN, trigger.Kind, err)
			return
		}
		if approved {
			log.Printf("[%s] Alert: %s at $%.2f", p.ASIN, trigger.Kind, trigger.Price)
			m.fanout.SendPriceAlert(notify.PriceAlert{Product: *p, Trigger: trigger})
			return
		}
	}
}

func priceChanged(prev, observed *float64) bool {
	if observed == nil {
		return false
	}
	return prev == nil || *prev != *observed
}
