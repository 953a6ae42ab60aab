// Package classify turns a raw observed price into trigger decisions.
package classify

import (
	"amazon-price-tracker/internal/models"
	"amazon-price-tracker/internal/threshold"
)

// Trigger is one satisfied rule with the numbers that satisfied it.
type Trigger struct {
	Kind        models.TriggerKind
	Price       float64 // the observed price
	Baseline    float64 // reference price the drop was measured from (0 for target)
	DropPct     float64
	DropDollars float64
}

// Result lists every satisfied rule in reporting priority order:
// target, then percent, then dollar. Empty means not notifiable.
type Result struct {
	Triggers []Trigger
}

// Notifiable reports whether any rule matched.
func (r Result) Notifiable() bool {
	return len(r.Triggers) > 0
}

// Primary returns the highest-priority satisfied trigger.
func (r Result) Primary() *Trigger {
	if len(r.Triggers) == 0 {
		return nil
	}
	return &r.Triggers[0]
}

// Classify evaluates one freshly observed price of the given kind
// against the previous recorded price of that same kind. Rules are
// independent (any match suffices). The target rule compares against
// its absolute floor and ignores prev entirely; the delta rules need a
// positive baseline. A nil observed price never notifies and the caller
// must keep the old baseline for future comparisons.
func Classify(prev, observed *float64, eff threshold.Effective, kind models.PriceKind) Result {
	var res Result
	if observed == nil || *observed <= 0 {
		return res
	}
	price := *observed

	if target := eff.Target(); target != nil && price <= *target {
		res.Triggers = append(res.Triggers, Trigger{
			Kind:  targetKind(kind),
			Price: price,
		})
	}

	if prev == nil || *prev <= 0 {
		return res
	}
	drop := *prev - price

	if pct := eff.Pct(kind); pct != nil {
		if dropPct := drop / *prev * 100; dropPct >= *pct {
			res.Triggers = append(res.Triggers, Trigger{
				Kind:        percentKind(kind),
				Price:       price,
				Baseline:    *prev,
				DropPct:     dropPct,
				DropDollars: drop,
			})
		}
	}

	if dollars := eff.Dollars(kind); dollars != nil && drop >= *dollars {
		res.Triggers = append(res.Triggers, Trigger{
			Kind:        dollarKind(kind),
			Price:       price,
			Baseline:    *prev,
			DropPct:     drop / *prev * 100,
			DropDollars: drop,
		})
	}

	return res
}

func targetKind(kind models.PriceKind) models.TriggerKind {
	if kind == models.PriceUsed {
		return models.TriggerUsedTarget
	}
	return models.TriggerNewTarget
}

func percentKind(kind models.PriceKind) models.TriggerKind {
	if kind == models.PriceUsed {
		return models.TriggerUsedPercent
	}
	return models.TriggerNewPercent
}

func dollarKind(kind models.PriceKind) models.TriggerKind {
	if kind == models.PriceUsed {
		return models.TriggerUsedDollar
	}
	return models.TriggerNewDollar
}
