package recall

import "strings"

// A hit needs at least this score before it becomes a stored match.
const minMatchScore = 55

// matchScore rates 0–100 how likely a recall notice describes the
// product. Scores below minMatchScore are noise: a brand hit alone or
// a couple of generic shared words must never clear the bar.
func matchScore(productTitle, recallText string) int {
	if productTitle == "" || recallText == "" {
		return 0
	}
	kw := ExtractKeywords(productTitle)
	if kw.Brand == "" {
		return 0
	}
	lowerRecall := strings.ToLower(recallText)

	score := 0
	brandHit := wordBoundaryMatch(kw.Brand, lowerRecall)
	if brandHit {
		score += 30
	}

	titleWords := withoutGeneric(significantWords(productTitle))
	recallWords := withoutGeneric(significantWords(recallText))
	delete(titleWords, kw.Brand)
	overlap := overlapCount(titleWords, recallWords)
	points := overlap * 12
	if points > 40 {
		points = 40
	}
	score += points

	if kw.ProductType != "" && strings.Contains(lowerRecall, kw.ProductType) {
		score += 15
	}

	// Hard caps keep weak evidence below the alert threshold.
	if !brandHit && score > 15 {
		score = 15
	}
	if overlap < 2 && score > 30 {
		score = 30
	}
	if score > 100 {
		score = 100
	}
	return score
}

func truncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
