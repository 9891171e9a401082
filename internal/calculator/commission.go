// Package calculator holds the pure money math for settlements: gross
// totals, percentage commissions, and per-seller payout slices. All amounts
// are integer minor units; percentage math goes through shopspring/decimal
// with a single half-up rounding so fractional cents are neither dropped nor
// duplicated anywhere.
package calculator

import (
	"github.com/shopspring/decimal"
)

// Item is the calculator's view of a purchased item.
type Item struct {
	ID            string
	Price         int64 // minor units
	SellerID      string
	CommissionPct int64 // the seller's commission percentage, 0-100
}

// SellerSplit is one seller's slice of a settlement.
type SellerSplit struct {
	SellerID      string
	CommissionPct int64

	// Subtotal is the sum of this seller's item prices.
	Subtotal int64

	// Commission is the platform's cut of the subtotal.
	Commission int64

	// Payout is Subtotal minus Commission: what the seller receives.
	Payout int64
}

// Gross returns the sum of the item prices.
func Gross(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Price
	}
	return total
}

// Commission applies pct (0-100) to amount, rounding half-up to the nearest
// minor unit. Every percentage-of-amount computation in the engine goes
// through here so the ledger sums stay exact.
func Commission(amount, pct int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(pct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// SellerSplits groups items by seller (preserving first-appearance order)
// and computes each seller's subtotal, commission, and payout.
//
// Within one split, Payout + Commission == Subtotal exactly; summed over all
// splits that makes Σ payouts + Σ commissions == Gross(items) by
// construction.
func SellerSplits(items []Item) []SellerSplit {
	index := make(map[string]int, len(items))
	var splits []SellerSplit
	for _, it := range items {
		i, ok := index[it.SellerID]
		if !ok {
			i = len(splits)
			index[it.SellerID] = i
			splits = append(splits, SellerSplit{
				SellerID:      it.SellerID,
				CommissionPct: it.CommissionPct,
			})
		}
		splits[i].Subtotal += it.Price
	}
	for i := range splits {
		splits[i].Commission = Commission(splits[i].Subtotal, splits[i].CommissionPct)
		splits[i].Payout = splits[i].Subtotal - splits[i].Commission
	}
	return splits
}

// TotalCommission sums the per-seller commissions; this is the amount the
// ledger records as the transaction's Commission.
func TotalCommission(splits []SellerSplit) int64 {
	var total int64
	for _, s := range splits {
		total += s.Commission
	}
	return total
}
