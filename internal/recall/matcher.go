package recall

import (
	"context"
	"log"
	"time"

	"amazon-price-tracker/internal/alert"
	"amazon-price-tracker/internal/database"
	"amazon-price-tracker/internal/models"
	"amazon-price-tracker/internal/notify"
)

// Client is one recall feed. Query returns the best match for a product
// title, or nil when nothing clears the feed's match threshold.
type Client interface {
	Source() string
	Query(ctx context.Context, productTitle string) (*models.RecallHit, error)
}

// Matcher runs the periodic recall scan over all active products.
type Matcher struct {
	db      *database.DB
	clients []Client
	deduper *alert.Deduper
	fanout  *notify.Fanout
	every   time.Duration
	quit    chan struct{}
}

func NewMatcher(db *database.DB, deduper *alert.Deduper, fanout *notify.Fanout, every time.Duration, clients ...Client) *Matcher {
	return &Matcher{
		db:      db,
		clients: clients,
		deduper: deduper,
		fanout:  fanout,
		every:   every,
		quit:    make(chan struct{}),
	}
}

// Start runs scans on the configured cadence until Stop. The last scan
// time is persisted, so a restart does not reset the clock.
func (m *Matcher) Start() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	m.runIfDue()
	for {
		select {
		case <-ticker.C:
			m.runIfDue()
		case <-m.quit:
			return
		}
	}
}

func (m *Matcher) Stop() {
	close(m.quit)
}

func (m *Matcher) runIfDue() {
	settings, err := m.db.GetSettings()
	if err != nil {
		log.Printf("RecallScanError: reading settings: %v", err)
		return
	}
	if !settings.LastRecallScan.IsZero() && time.Since(settings.LastRecallScan) < m.every {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.quit:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := m.RunOnce(ctx); err != nil {
		log.Printf("RecallScanError: %v", err)
	}
}

// RunOnce scans every active product against every feed. Products still
// carrying a placeholder title are skipped: their keywords would match
// everything and nothing.
func (m *Matcher) RunOnce(ctx context.Context) error {
	products, err := m.db.ActiveProducts()
	if err != nil {
		return err
	}
	log.Printf("RecallScan: checking %d products", len(products))
	for i, p := range products {
		if p.HasPlaceholderTitle() {
			continue
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
		m.scanProduct(ctx, p)
	}
	if err := m.db.SetLastRecallScan(time.Now()); err != nil {
		return err
	}
	return nil
}

func (m *Matcher) scanProduct(ctx context.Context, p models.Product) {
	for _, client := range m.clients {
		source := client.Source()
		dismissed, err := m.db.HasDismissedMatch(p.ASIN, source)
		if err != nil {
			log.Printf("RecallMatchError: %s/%s: %v", p.ASIN, source, err)
			continue
		}
		// A dismissal covers the whole source for this product.
		if dismissed {
			continue
		}
		hit, err := client.Query(ctx, p.Title)
		if err != nil {
			log.Printf("RecallMatchError: %s/%s: %v", p.ASIN, source, err)
			continue
		}
		if hit == nil {
			continue
		}
		m.record(p, *hit)
	}
}

// record stores the match and notifies if this (product, source id)
// pair has never alerted before.
func (m *Matcher) record(p models.Product, hit models.RecallHit) {
	match := models.RecallMatch{
		ASIN:        p.ASIN,
		Source:      hit.Source,
		SourceID:    hit.SourceID,
		Number:      hit.Number,
		Title:       hit.Title,
		Description: hit.Description,
		URL:         hit.URL,
		Hazard:      hit.Hazard,
		Remedy:      hit.Remedy,
		Date:        hit.Date,
		Contact:     hit.Contact,
		FirstSeen:   time.Now(),
	}
	created, err := m.db.InsertRecallMatch(match)
	if err != nil {
		log.Printf("RecallMatchError: storing %s/%s: %v", p.ASIN, hit.SourceID, err)
		return
	}
	if !created {
		return
	}
	log.Printf("RecallMatch: %s matched %s recall %s (score %d)", p.ASIN, hit.Source, hit.SourceID, hit.Score)

	approved, err := m.deduper.ApproveRecall(p.ASIN, hit.Source+":"+hit.SourceID)
	if err != nil {
		log.Printf("RecallAlertError: %s: %v", p.ASIN, err)
		return
	}
	if approved {
		m.fanout.SendRecallAlert(notify.RecallAlert{Product: p, Match: match})
	}
}

// Dismiss marks a match so it never notifies again.
func (m *Matcher) Dismiss(asin, source, sourceID string) error {
	return m.db.DismissRecall(asin, source, sourceID)
}

// Undismiss forgets the match entirely, so a feed re-serving the same
// entry is treated as new again.
func (m *Matcher) Undismiss(asin, source, sourceID string) error {
	return m.db.ClearRecall(asin, source, sourceID)
}
