package recall

import "testing"

func TestExtractKeywords(t *testing.T) {
	kw := ExtractKeywords("Graco Pack 'n Play Portable Playard with Bassinet, Gray")
	if kw.Brand != "graco" {
		t.Errorf("Brand = %q, want graco", kw.Brand)
	}
	if len(kw.Queries) == 0 {
		t.Fatal("no queries built")
	}
	if kw.Queries[0].Weight < kw.Queries[len(kw.Queries)-1].Weight {
		t.Error("queries are not most-specific first")
	}
}

func TestExtractKeywordsEmptyAndPlaceholder(t *testing.T) {
	if kw := ExtractKeywords(""); kw.Brand != "" {
		t.Errorf("Brand = %q for empty title", kw.Brand)
	}
	// Placeholder fragments and the bare item code carry no signal.
	kw := ExtractKeywords("Loading... B08N5WRWNW")
	if kw.Brand != "" {
		t.Errorf("Brand = %q for a placeholder title", kw.Brand)
	}
}

func TestMatchScoreAcceptsRealMatch(t *testing.T) {
	title := "Britax Boulevard ClickTight Convertible Car Seat, Cool Flow Gray"
	recall := "Britax recalls Boulevard and Marathon ClickTight convertible car seats " +
		"due to an injury hazard when the harness loosens"
	if got := matchScore(title, recall); got < minMatchScore {
		t.Errorf("score = %d for a genuine brand+product match, want >= %d", got, minMatchScore)
	}
}

func TestMatchScoreBrandAloneStaysBelowThreshold(t *testing.T) {
	title := "Samsung Galaxy Buds Wireless Earbuds, White"
	recall := "Samsung recalls top-load washing machines due to impact injury hazard"
	got := matchScore(title, recall)
	if got >= minMatchScore {
		t.Errorf("score = %d for same brand, different product; want < %d", got, minMatchScore)
	}
}

func TestMatchScoreNoBrandIsCapped(t *testing.T) {
	title := "Acme Widget Deluxe Kitchen Blender"
	recall := "Contoso recalls kitchen blenders due to laceration hazard from blade detaching"
	got := matchScore(title, recall)
	if got > 15 {
		t.Errorf("score = %d without a brand hit, want <= 15", got)
	}
}

func TestMatchScoreEmptyInputs(t *testing.T) {
	if got := matchScore("", "some recall"); got != 0 {
		t.Errorf("score = %d for empty title", got)
	}
	if got := matchScore("Some Product", ""); got != 0 {
		t.Errorf("score = %d for empty recall text", got)
	}
}
