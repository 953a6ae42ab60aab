package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"amazon-price-tracker/internal/models"
)

const titleMaxLength = 77

// AmazonScraper extracts prices from amazon.com product pages: the main
// page for the new price and the offer-listing page for used offers.
type AmazonScraper struct {
	client *http.Client
	// baseURL is overridable so tests can point at a local server.
	baseURL string
}

// NewAmazonScraper creates a scraper with a 30s request timeout.
func NewAmazonScraper() *AmazonScraper {
	return &AmazonScraper{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://www.amazon.com",
	}
}

// CanHandle accepts amazon product URLs and bare item codes.
func (a *AmazonScraper) CanHandle(url string) bool {
	return strings.Contains(url, "amazon.") || bareAsinRe.MatchString(strings.TrimSpace(url))
}

// Fetch loads the product page and the offers page and extracts title,
// new price and lowest used price. A page with no offers at all comes
// back as unavailable, not as an error.
func (a *AmazonScraper) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	asin := ExtractASIN(url)
	if asin == "" {
		return nil, fmt.Errorf("no item code in URL %q", url)
	}

	html, err := a.get(ctx, a.baseURL+"/dp/"+asin)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	if blocked(doc, html) {
		return nil, ErrBlocked
	}

	result := &models.FetchResult{Availability: models.AvailabilityUnavailable}
	result.Title = parseTitle(doc)
	result.NewPrice = parseNewPrice(doc, html)

	// Polite pause before the second page; the global limiter paces
	// whole checks, not the two requests inside one.
	select {
	case <-time.After(time.Duration(2+rand.Intn(3)) * time.Second):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	offersHTML, err := a.get(ctx, a.baseURL+"/gp/offer-listing/"+asin+"?ie=UTF8&condition=all")
	if err == nil {
		offersDoc, derr := goquery.NewDocumentFromReader(bytes.NewReader(offersHTML))
		if derr == nil && !blocked(offersDoc, offersHTML) {
			usedPrice, offerNew := parseOffers(offersDoc, offersHTML)
			result.UsedPrice = usedPrice
			if offerNew != nil && (result.NewPrice == nil || *offerNew < *result.NewPrice) {
				result.NewPrice = offerNew
			}
		}
	}

	if result.NewPrice != nil || result.UsedPrice != nil {
		result.Availability = models.AvailabilityInStock
	}
	return result, nil
}

func (a *AmazonScraper) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// blocked recognizes CAPTCHA interstitials and the minimal robot-check
// page Amazon serves when it suspects automation.
func blocked(doc *goquery.Document, html []byte) bool {
	if doc.Find("#captchacharacters").Length() > 0 {
		return true
	}
	lower := strings.ToLower(string(html))
	if strings.Contains(lower, "captcha") {
		return true
	}
	return len(html) < 5000 && strings.Contains(lower, "robot")
}

func parseTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	runes := []rune(title)
	if len(runes) > titleMaxLength {
		title = string(runes[:titleMaxLength])
	}
	return title
}

// Selector cascade for the buy-box price; Amazon reshuffles these
// often, so order is newest layout first.
var newPriceSelectors = []string{
	"#corePrice_feature_div .a-offscreen",
	".reinventPricePriceToPayMargin .a-offscreen",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	"#apex_offerDisplay_desktop .a-offscreen",
	".a-price .a-offscreen",
	"#tp_price_block_total_price_ww .a-offscreen",
	"#price_inside_buybox",
	"#newBuyBoxPrice",
}

var priceAmountRe = regexp.MustCompile(`"priceAmount":\s*(\d+\.?\d*)`)

func parseNewPrice(doc *goquery.Document, html []byte) *float64 {
	for _, sel := range newPriceSelectors {
		if price := ParsePrice(doc.Find(sel).First().Text()); price != nil {
			return price
		}
	}
	// Embedded-JSON fallback when the selectors all miss.
	if m := priceAmountRe.FindSubmatch(html); m != nil {
		if v, err := strconv.ParseFloat(string(m[1]), 64); err == nil && v >= 0.50 && v <= 100000 {
			return &v
		}
	}
	return nil
}

var usedConditionWords = []string{"used", "renewed", "refurbished", "acceptable", "good", "very good", "like new"}

var usedFromRe = regexp.MustCompile(`(?i)Used\s*(?:\([^)]*\)\s*)?from\s*\$(\d+\.\d{2})`)

// parseOffers walks the offer-listing page and returns the lowest used
// price and the lowest new price found among the offers.
func parseOffers(doc *goquery.Document, html []byte) (usedPrice, newPrice *float64) {
	var usedPrices, newPrices []float64

	classifyOffer := func(s *goquery.Selection) {
		price := ParsePrice(s.Find(".a-price .a-offscreen").First().Text())
		if price == nil {
			return
		}
		heading := strings.ToLower(strings.TrimSpace(s.Find("#aod-offer-heading").First().Text()))
		for _, w := range usedConditionWords {
			if strings.Contains(heading, w) {
				usedPrices = append(usedPrices, *price)
				return
			}
		}
		if heading == "" || strings.Contains(heading, "new") {
			newPrices = append(newPrices, *price)
		}
	}

	if pinned := doc.Find("#aod-pinned-offer"); pinned.Length() > 0 {
		classifyOffer(pinned.First())
	}
	doc.Find("#aod-offer-list #aod-offer").Each(func(_ int, s *goquery.Selection) {
		classifyOffer(s)
	})

	// Text fallback for the "Used from $X" summary line.
	for _, m := range usedFromRe.FindAllSubmatch(html, -1) {
		if v, err := strconv.ParseFloat(string(m[1]), 64); err == nil && v >= 1.00 && v <= 100000 {
			usedPrices = append(usedPrices, v)
		}
	}

	return minPrice(usedPrices), minPrice(newPrices)
}

func minPrice(prices []float64) *float64 {
	if len(prices) == 0 {
		return nil
	}
	min := prices[0]
	for _, p := range prices[1:] {
		if p < min {
			min = p
		}
	}
	return &min
}
