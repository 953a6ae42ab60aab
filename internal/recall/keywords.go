// Package recall matches tracked products against public recall feeds.
package recall

import (
	"regexp"
	"strings"
	"unicode"
)

// Query is one feed search string with a specificity weight.
type Query struct {
	Text   string
	Weight int
}

// Keywords is what a product title boils down to for feed lookups.
type Keywords struct {
	Brand       string
	ProductType string
	Queries     []Query
}

// Words that carry no brand or product-type signal in listing titles.
var titleStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "for": true,
	"with": true, "in": true, "on": true, "of": true, "to": true, "by": true,
	"from": true, "is": true, "it": true, "that": true, "this": true, "be": true,
	"at": true, "as": true, "pack": true, "set": true, "count": true, "piece": true,
	"inch": true, "inches": true, "ft": true, "oz": true, "lb": true, "lbs": true,
	"ml": true, "size": true, "color": true, "new": true, "edition": true,
	"version": true, "updated": true, "latest": true, "prime": true, "brand": true,
	"item": true, "best": true, "seller": true, "great": true, "value": true,
	"premium": true, "professional": true, "ultra": true, "super": true,
	"pro": true, "plus": true, "max": true, "mini": true, "deluxe": true,
}

// Short words that are grammar, not product names, even when
// capitalized at the start of a sentence.
var shortGrammarWords = map[string]bool{
	"the": true, "and": true, "for": true, "but": true, "not": true, "are": true,
	"was": true, "has": true, "its": true, "you": true, "can": true, "may": true,
	"all": true, "any": true, "who": true, "why": true, "how": true, "did": true,
	"get": true, "got": true, "had": true, "him": true, "her": true, "his": true,
	"our": true, "own": true, "new": true, "old": true, "one": true, "two": true,
	"big": true, "few": true, "set": true, "use": true, "say": true, "see": true,
	"try": true, "day": true, "way": true, "end": true, "yet": true, "now": true,
	"let": true, "put": true, "run": true, "cut": true, "off": true, "ask": true,
	"add": true, "men": true, "per": true,
}

// Boilerplate recall-notice vocabulary that would inflate any overlap.
var genericWords = map[string]bool{
	"product": true, "item": true, "model": true, "number": true, "about": true,
	"units": true, "sold": true, "stores": true, "between": true, "through": true,
	"from": true, "were": true, "with": true, "that": true, "this": true,
	"have": true, "been": true, "consumers": true, "should": true, "contact": true,
	"company": true, "free": true, "replacement": true, "refund": true,
	"risk": true, "injury": true, "hazard": true, "recall": true, "recalled": true,
	"due": true, "poses": true, "posing": true, "also": true, "each": true,
	"made": true, "make": true, "more": true, "most": true, "much": true,
	"only": true, "over": true, "some": true, "such": true, "than": true,
	"them": true, "then": true, "they": true, "very": true, "when": true,
	"will": true, "your": true, "used": true, "like": true, "does": true,
	"just": true, "into": true, "back": true, "after": true, "could": true,
	"would": true, "which": true, "first": true, "other": true, "where": true,
	"still": true, "every": true, "under": true, "while": true, "these": true,
	"being": true, "there": true, "those": true, "might": true, "comes": true,
	"including": true, "contains": true, "found": true,
}

var (
	placeholderRe = regexp.MustCompile(`(?i)\b(Loading|Order Item|B[0-9][A-Z0-9]{8})\b`)
	punctRe       = regexp.MustCompile(`[,\-–—|/\\()\[\]{}]`)
	spaceRe       = regexp.MustCompile(`\s+`)
	longWordRe    = regexp.MustCompile(`\b[a-z]{4,}\b`)
	shortWordRe   = regexp.MustCompile(`\b([a-zA-Z0-9]{2,3})\b`)
	hasLetterRe   = regexp.MustCompile(`[a-zA-Z]`)
	allCapsCodeRe = regexp.MustCompile(`^[A-Z0-9]{2,}$`)
)

// ExtractKeywords pulls the brand (leading significant word) and
// product-type words out of a listing title and builds the feed query
// ladder, most specific first.
func ExtractKeywords(title string) Keywords {
	if title == "" {
		return Keywords{}
	}
	clean := placeholderRe.ReplaceAllString(title, "")
	clean = punctRe.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(spaceRe.ReplaceAllString(clean, " "))

	var words []string
	for _, w := range strings.Fields(clean) {
		if len(w) > 1 && !titleStopWords[strings.ToLower(w)] && hasLetterRe.MatchString(w) {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return Keywords{}
	}

	brand := words[0]

	// Product type: the core nouns describing what the product is.
	// Skips the brand, bare numbers, and short all-caps model codes.
	var typeWords []string
	for _, w := range words[1:] {
		if len(w) > 3 && !unicode.IsDigit(rune(w[0])) && !allCapsCodeRe.MatchString(w) {
			typeWords = append(typeWords, w)
		}
	}
	productType := strings.Join(firstN(typeWords, 3), " ")

	var queries []Query
	if len(typeWords) > 0 {
		queries = append(queries, Query{Text: brand + " " + strings.Join(firstN(typeWords, 2), " "), Weight: 3})
	}
	queries = append(queries, Query{Text: brand, Weight: 1})
	if len(typeWords) > 0 {
		queries = append(queries, Query{Text: brand + " " + typeWords[0], Weight: 2})
	}

	return Keywords{
		Brand:       strings.ToLower(brand),
		ProductType: strings.ToLower(productType),
		Queries:     queries,
	}
}

func firstN(words []string, n int) []string {
	if len(words) > n {
		return words[:n]
	}
	return words
}

// significantWords extracts the comparable vocabulary of a text: all
// 4+ letter words, plus 2 or 3 character tokens that look
// product-specific (carry a digit, or are capitalized and not a
// grammar word).
func significantWords(original string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range longWordRe.FindAllString(strings.ToLower(original), -1) {
		words[w] = true
	}
	for _, m := range shortWordRe.FindAllStringSubmatch(original, -1) {
		w := m[1]
		hasDigit := strings.IndexFunc(w, unicode.IsDigit) >= 0
		capitalized := unicode.IsUpper(rune(w[0])) && !shortGrammarWords[strings.ToLower(w)]
		if hasDigit || capitalized {
			words[strings.ToLower(w)] = true
		}
	}
	return words
}

func withoutGeneric(words map[string]bool) map[string]bool {
	out := make(map[string]bool, len(words))
	for w := range words {
		if !genericWords[w] {
			out[w] = true
		}
	}
	return out
}

func overlapCount(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func wordBoundaryMatch(word, text string) bool {
	if word == "" {
		return false
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}
