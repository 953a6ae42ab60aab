package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"amazon-price-tracker/internal/models"
)

var fdaEndpoints = []string{
	"https://api.fda.gov/food/enforcement.json",
	"https://api.fda.gov/drug/enforcement.json",
	"https://api.fda.gov/device/enforcement.json",
}

type fdaResult struct {
	RecallNumber       string `json:"recall_number"`
	ProductDescription string `json:"product_description"`
	ReasonForRecall    string `json:"reason_for_recall"`
	RecallingFirm      string `json:"recalling_firm"`
	Classification     string `json:"classification"`
	Status             string `json:"status"`
	RecallInitDate     string `json:"recall_initiation_date"`
	City               string `json:"city"`
	State              string `json:"state"`
}

// FDAClient queries the openFDA enforcement feeds for food, drug and
// device recalls.
type FDAClient struct {
	client    *http.Client
	endpoints []string
}

func NewFDAClient() *FDAClient {
	return &FDAClient{
		client:    &http.Client{Timeout: 20 * time.Second},
		endpoints: fdaEndpoints,
	}
}

func (c *FDAClient) Source() string { return "fda" }

func (c *FDAClient) Query(ctx context.Context, productTitle string) (*models.RecallHit, error) {
	kw := ExtractKeywords(productTitle)
	if kw.Brand == "" {
		return nil, nil
	}
	query := kw.Brand
	if kw.ProductType != "" {
		query += " " + kw.ProductType
	}

	var best *models.RecallHit
	for i, endpoint := range c.endpoints {
		if i > 0 {
			select {
			case <-ctx.Done():
				return best, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
		results, err := c.search(ctx, endpoint, query)
		if err != nil {
			return best, fmt.Errorf("fda search %s: %w", endpoint, err)
		}
		for _, r := range results {
			text := strings.Join([]string{r.ProductDescription, r.ReasonForRecall, r.RecallingFirm}, " ")
			score := matchScore(productTitle, text)
			if score < minMatchScore {
				continue
			}
			if best == nil || score > best.Score {
				hit := c.toHit(r, score)
				best = &hit
			}
		}
	}
	return best, nil
}

func (c *FDAClient) search(ctx context.Context, endpoint, query string) ([]fdaResult, error) {
	u := endpoint + `?search=product_description:"` + url.QueryEscape(query) + `"&limit=5`
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	// openFDA answers 404 when a search matches nothing.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body struct {
		Results []fdaResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

func (c *FDAClient) toHit(r fdaResult, score int) models.RecallHit {
	title := "FDA Recall: " + r.RecallingFirm
	if r.ProductDescription != "" {
		title += " - " + truncateText(r.ProductDescription, 100)
	}
	return models.RecallHit{
		Source:      "fda",
		SourceID:    r.RecallNumber,
		Number:      r.RecallNumber,
		Title:       truncateText(title, 300),
		Description: truncateText(r.ProductDescription, 1000),
		Hazard:      truncateText(fdaHazard(r), 500),
		Remedy:      r.Status,
		Date:        fdaDate(r.RecallInitDate),
		Contact:     strings.TrimSpace(r.RecallingFirm + " " + r.City + " " + r.State),
		Score:       score,
	}
}

// fdaHazard folds the enforcement classification into a readable
// severity line. Class I is the most serious.
func fdaHazard(r fdaResult) string {
	severity := map[string]string{
		"Class I":   "serious risk of health consequences or death",
		"Class II":  "temporary or reversible health consequences",
		"Class III": "unlikely to cause health consequences",
	}[r.Classification]
	if severity == "" {
		return r.ReasonForRecall
	}
	return r.Classification + " (" + severity + "): " + r.ReasonForRecall
}

// fdaDate converts the feed's YYYYMMDD stamps to YYYY-MM-DD.
func fdaDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}
