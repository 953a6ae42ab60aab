// Package threshold resolves which drop rules apply to one
// classification decision.
package threshold

import "amazon-price-tracker/internal/models"

// Source tags where the effective rule set came from.
type Source int

const (
	// PerProduct means the product's own thresholds apply; unset fields
	// stay unset (that rule simply never fires).
	PerProduct Source = iota
	// GlobalOverride means the global set applies verbatim. A blank
	// global field disables that rule globally; it does not fall back
	// to the product value.
	GlobalOverride
)

// Effective is the resolved, authoritative rule set for one decision.
type Effective struct {
	Source Source
	Rules  models.ThresholdSet
}

// Resolve merges the two threshold scopes. It is a pure function of its
// arguments: under the override flag the product set is ignored
// entirely, otherwise the global set is. Fields are never mixed across
// scopes.
func Resolve(product models.ThresholdSet, global models.ThresholdSet, overrideEnabled bool) Effective {
	if overrideEnabled {
		return Effective{Source: GlobalOverride, Rules: global}
	}
	return Effective{Source: PerProduct, Rules: product}
}

// Pct returns the percent-drop threshold for a price kind, nil when
// that rule is disabled.
func (e Effective) Pct(kind models.PriceKind) *float64 {
	if kind == models.PriceUsed {
		return e.Rules.UsedPct
	}
	return e.Rules.NewPct
}

// Dollars returns the dollar-drop threshold for a price kind, nil when
// that rule is disabled.
func (e Effective) Dollars(kind models.PriceKind) *float64 {
	if kind == models.PriceUsed {
		return e.Rules.UsedDollars
	}
	return e.Rules.NewDollars
}

// Target returns the absolute price floor, nil when disabled.
func (e Effective) Target() *float64 {
	return e.Rules.TargetPrice
}
