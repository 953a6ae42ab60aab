// Package scraper fetches product pages and extracts price data.
package scraper

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"amazon-price-tracker/internal/models"
)

// Fetch failure taxonomy. All of these are transient: the scheduler
// advances the product's next check on the normal randomized window and
// never retries immediately.
var (
	// ErrBlocked means the upstream served a CAPTCHA or a minimal
	// robot-check page. A tight retry here would make detection worse.
	ErrBlocked = errors.New("bot detection triggered")
	// ErrBadStatus means a non-200 response.
	ErrBadStatus = errors.New("unexpected response status")
)

// Scraper extracts price data for one marketplace. An unavailable
// listing is a successful fetch with nil prices, never an error.
type Scraper interface {
	CanHandle(url string) bool
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)
}

// Registry dispatches URLs to the scraper that can handle them.
type Registry struct {
	scrapers []Scraper
}

// NewRegistry creates a registry with the built-in scrapers.
func NewRegistry() *Registry {
	return &Registry{
		scrapers: []Scraper{
			NewAmazonScraper(),
		},
	}
}

// Register adds a scraper. Used by tests to install fakes.
func (r *Registry) Register(s Scraper) {
	r.scrapers = append([]Scraper{s}, r.scrapers...)
}

// FindScraper returns the first scraper that handles the URL, or nil.
func (r *Registry) FindScraper(url string) Scraper {
	for _, s := range r.scrapers {
		if s.CanHandle(url) {
			return s
		}
	}
	return nil
}

var (
	asinRe     = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d)/([A-Z0-9]{10})(?:[/?]|$)`)
	bareAsinRe = regexp.MustCompile(`(?i)^[A-Z0-9]{10}$`)
	priceRe    = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*\.\d{2})`)
)

// ExtractASIN pulls the item code out of a product URL. Accepts bare
// codes like "B08N5WRWNW" as well.
func ExtractASIN(url string) string {
	url = strings.TrimSpace(url)
	if bareAsinRe.MatchString(url) {
		return strings.ToUpper(url)
	}
	if m := asinRe.FindStringSubmatch(url); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// ParsePrice extracts a dollar amount from page text. Prices outside
// $1–$100000 are treated as parsing noise and rejected.
func ParsePrice(text string) *float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v < 1.00 || v > 100000 {
		return nil
	}
	return &v
}
