package scraper

import (
	"testing"
)

func TestExtractASIN(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW"},
		{"https://www.amazon.com/Some-Product-Name/dp/B08N5WRWNW/ref=sr_1_1", "B08N5WRWNW"},
		{"https://www.amazon.com/gp/product/B07XJ8C8F5?th=1", "B07XJ8C8F5"},
		{"https://www.amazon.com/gp/aw/d/B00EXAMPLE", "B00EXAMPLE"},
		{"b08n5wrwnw", "B08N5WRWNW"},
		{"  B08N5WRWNW  ", "B08N5WRWNW"},
		{"https://www.amazon.com/gp/cart/view.html", ""},
		{"not a url", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractASIN(c.url); got != c.want {
			t.Errorf("ExtractASIN(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"$49.99", 49.99, true},
		{"Price: $1,299.00 + tax", 1299.00, true},
		{"$1.00", 1.00, true},
		{"$0.99", 0, false},  // under the sanity floor
		{"$49", 0, false},    // needs cents
		{"49.99", 0, false},  // needs the currency sign
		{"no price here", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got := ParsePrice(c.text)
		if c.ok {
			if got == nil || *got != c.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", c.text, got, c.want)
			}
		} else if got != nil {
			t.Errorf("ParsePrice(%q) = %v, want nil", c.text, *got)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	if s := r.FindScraper("https://www.amazon.com/dp/B08N5WRWNW"); s == nil {
		t.Error("no scraper for an amazon URL")
	}
	if s := r.FindScraper("B08N5WRWNW"); s == nil {
		t.Error("no scraper for a bare item code")
	}
	if s := r.FindScraper("https://example.com/product/1"); s != nil {
		t.Errorf("unexpected scraper %T for an unsupported URL", s)
	}
}
