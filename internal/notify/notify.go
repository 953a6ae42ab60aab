// Package notify delivers approved alerts to the configured channels.
package notify

import (
	"fmt"
	"log"
	"strings"

	"amazon-price-tracker/internal/classify"
	"amazon-price-tracker/internal/models"
)

// PriceAlert carries everything a channel needs to announce a drop.
type PriceAlert struct {
	Product models.Product
	Trigger classify.Trigger
}

// RecallAlert announces a newly matched recall.
type RecallAlert struct {
	Product models.Product
	Match   models.RecallMatch
}

// Notifier is one delivery channel. Send failures are the channel's
// problem to report; the engine logs them and moves on.
type Notifier interface {
	SendPriceAlert(a PriceAlert) error
	SendRecallAlert(a RecallAlert) error
	Name() string
}

// Fanout delivers to every configured channel, logging failures
// instead of propagating them. A dead mail server must never stall
// price checking.
type Fanout struct {
	channels []Notifier
}

// NewFanout builds a fanout over the given channels.
func NewFanout(channels ...Notifier) *Fanout {
	return &Fanout{channels: channels}
}

// SendPriceAlert dispatches to all channels.
func (f *Fanout) SendPriceAlert(a PriceAlert) {
	for _, ch := range f.channels {
		if err := ch.SendPriceAlert(a); err != nil {
			log.Printf("Alert delivery via %s failed for %s: %v", ch.Name(), a.Product.ASIN, err)
		}
	}
}

// SendRecallAlert dispatches to all channels.
func (f *Fanout) SendRecallAlert(a RecallAlert) {
	for _, ch := range f.channels {
		if err := ch.SendRecallAlert(a); err != nil {
			log.Printf("Recall delivery via %s failed for %s: %v", ch.Name(), a.Product.ASIN, err)
		}
	}
}

// priceAlertBody renders the shared plain-text body for a price alert.
func priceAlertBody(a PriceAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s\n", a.Product.Title)
	if a.Product.PurchasePrice != nil {
		fmt.Fprintf(&b, "💰 You paid: $%.2f\n", *a.Product.PurchasePrice)
	}
	b.WriteString("\n")
	b.WriteString(triggerLine(a.Trigger))
	fmt.Fprintf(&b, "\n\n🔗 %s", a.Product.URL)
	return b.String()
}

func triggerLine(t classify.Trigger) string {
	label := "NEW"
	switch t.Kind {
	case models.TriggerUsedPercent, models.TriggerUsedDollar, models.TriggerUsedTarget:
		label = "USED"
	}
	switch t.Kind {
	case models.TriggerNewTarget, models.TriggerUsedTarget:
		return fmt.Sprintf("🎯 %s $%.2f hit your target price", label, t.Price)
	default:
		return fmt.Sprintf("📉 %s dropped %.1f%% ($%.2f) to $%.2f",
			label, t.DropPct, t.DropDollars, t.Price)
	}
}

// recallAlertBody renders the shared plain-text body for a recall alert.
func recallAlertBody(a RecallAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ RECALL NOTICE\n\n📦 %s\n\n%s\n", a.Product.Title, a.Match.Title)
	if a.Match.Hazard != "" {
		fmt.Fprintf(&b, "\nHazard: %s\n", a.Match.Hazard)
	}
	if a.Match.Remedy != "" {
		fmt.Fprintf(&b, "Remedy: %s\n", a.Match.Remedy)
	}
	if a.Match.Contact != "" {
		fmt.Fprintf(&b, "Contact: %s\n", a.Match.Contact)
	}
	if a.Match.URL != "" {
		fmt.Fprintf(&b, "\n🔗 %s", a.Match.URL)
	}
	return b.String()
}
