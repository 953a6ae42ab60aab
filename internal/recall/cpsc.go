package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"amazon-price-tracker/internal/models"
)

const cpscBaseURL = "https://www.saferproducts.gov/RestWebServices/Recall"

// cpscRecall mirrors the fields we read from the CPSC Recall API.
type cpscRecall struct {
	RecallID        int    `json:"RecallID"`
	RecallNumber    string `json:"RecallNumber"`
	RecallDate      string `json:"RecallDate"`
	Title           string `json:"Title"`
	Description     string `json:"Description"`
	URL             string `json:"URL"`
	ConsumerContact string `json:"ConsumerContact"`
	Products        []struct {
		Name  string `json:"Name"`
		Model string `json:"Model"`
		Type  string `json:"Type"`
	} `json:"Products"`
	Manufacturers []struct {
		Name string `json:"Name"`
	} `json:"Manufacturers"`
	Hazards []struct {
		Name string `json:"Name"`
	} `json:"Hazards"`
	Remedies []struct {
		Name string `json:"Name"`
	} `json:"Remedies"`
}

// CPSCClient queries the Consumer Product Safety Commission recall feed.
type CPSCClient struct {
	client  *http.Client
	baseURL string
}

func NewCPSCClient() *CPSCClient {
	return &CPSCClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: cpscBaseURL,
	}
}

func (c *CPSCClient) Source() string { return "cpsc" }

// Query searches the feed with the title's query ladder and returns the
// best-scoring recall, or nil when nothing clears the match threshold.
func (c *CPSCClient) Query(ctx context.Context, productTitle string) (*models.RecallHit, error) {
	kw := ExtractKeywords(productTitle)
	if kw.Brand == "" {
		return nil, nil
	}

	var best *models.RecallHit
	for i, q := range kw.Queries {
		if i > 0 {
			select {
			case <-ctx.Done():
				return best, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
		recalls, err := c.search(ctx, q.Text)
		if err != nil {
			return best, fmt.Errorf("cpsc search %q: %w", q.Text, err)
		}
		for _, r := range recalls {
			score := matchScore(productTitle, c.recallText(r))
			if score < minMatchScore {
				continue
			}
			if best == nil || score > best.Score {
				hit := c.toHit(r, score)
				best = &hit
			}
		}
		// A near-certain match ends the ladder early.
		if best != nil && best.Score >= 85 {
			break
		}
	}
	return best, nil
}

func (c *CPSCClient) search(ctx context.Context, query string) ([]cpscRecall, error) {
	u := c.baseURL + "?format=json&ProductName=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var recalls []cpscRecall
	if err := json.NewDecoder(resp.Body).Decode(&recalls); err != nil {
		return nil, err
	}
	// Only the newest entries are worth scoring in full.
	if len(recalls) > 25 {
		recalls = recalls[:25]
	}
	return recalls, nil
}

// recallText flattens a recall into the text blob the scorer compares
// against the product title.
func (c *CPSCClient) recallText(r cpscRecall) string {
	parts := []string{r.Title, r.Description}
	for _, p := range r.Products {
		parts = append(parts, p.Name, p.Model)
	}
	for _, m := range r.Manufacturers {
		parts = append(parts, m.Name)
	}
	return strings.Join(parts, " ")
}

func (c *CPSCClient) toHit(r cpscRecall, score int) models.RecallHit {
	hit := models.RecallHit{
		Source:      "cpsc",
		SourceID:    strconv.Itoa(r.RecallID),
		Number:      r.RecallNumber,
		Title:       truncateText(r.Title, 300),
		Description: truncateText(r.Description, 1000),
		URL:         r.URL,
		Date:        r.RecallDate,
		Contact:     truncateText(r.ConsumerContact, 500),
		Score:       score,
	}
	if len(r.Hazards) > 0 {
		hit.Hazard = truncateText(r.Hazards[0].Name, 500)
	}
	if len(r.Remedies) > 0 {
		hit.Remedy = truncateText(r.Remedies[0].Name, 500)
	}
	return hit
}
