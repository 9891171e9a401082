package service

import (
	"github.com/google/uuid"

	"github.com/tillgate/marketplace/internal/calculator"
	"github.com/tillgate/marketplace/internal/models"
)

// PlanKind tags the two terminal settlement strategies.
type PlanKind string

const (
	// SingleMerchant settles with one destination charge: the gateway
	// charges the buyer and routes the seller's net share in one step.
	SingleMerchant PlanKind = "single_merchant"

	// MultiMerchant settles with one charge against the buyer followed by
	// one transfer per distinct seller, linked by a transfer group.
	MultiMerchant PlanKind = "multi_merchant"
)

// Plan is the settlement strategy selected for one request: a tagged variant
// consumed by the orchestrator in a single dispatch. Exactly one of Single
// or Multi is set, matching Kind.
type Plan struct {
	Kind     PlanKind
	Gross    int64
	Currency string

	Single *SinglePlan
	Multi  *MultiPlan
}

// SinglePlan is a destination charge: the whole gross goes through one
// seller's merchant account.
type SinglePlan struct {
	SellerID   string
	AccountRef string

	// Commission is the platform's cut; the destination receives
	// Gross - Commission.
	Commission int64
}

// MultiPlan is a charge plus N transfers sharing one transfer group.
type MultiPlan struct {
	TransferGroup string
	Payouts       []SellerPayout
}

// SellerPayout is one seller's transfer within a multi-merchant plan.
type SellerPayout struct {
	SellerID   string
	AccountRef string

	// Amount is the seller's subtotal net of their commission.
	Amount     int64
	Commission int64
}

// selectPlan partitions the items by seller and chooses the strategy: all
// items resolving to the same seller profile means a destination charge,
// anything else a charge plus transfers. A single-item purchase is the
// degenerate single-merchant case.
func selectPlan(items []models.Item, sellers map[string]models.SellerProfile) Plan {
	calcItems := make([]calculator.Item, len(items))
	for i, it := range items {
		calcItems[i] = calculator.Item{
			ID:            it.ID,
			Price:         it.Price,
			SellerID:      it.SellerID,
			CommissionPct: sellers[it.SellerID].CommissionPercentage,
		}
	}

	splits := calculator.SellerSplits(calcItems)
	plan := Plan{
		Gross:    calculator.Gross(calcItems),
		Currency: items[0].Currency,
	}

	if len(splits) == 1 {
		s := splits[0]
		plan.Kind = SingleMerchant
		plan.Single = &SinglePlan{
			SellerID:   s.SellerID,
			AccountRef: sellers[s.SellerID].MerchantAccountRef,
			Commission: s.Commission,
		}
		return plan
	}

	plan.Kind = MultiMerchant
	plan.Multi = &MultiPlan{TransferGroup: uuid.New().String()}
	for _, s := range splits {
		plan.Multi.Payouts = append(plan.Multi.Payouts, SellerPayout{
			SellerID:   s.SellerID,
			AccountRef: sellers[s.SellerID].MerchantAccountRef,
			Amount:     s.Payout,
			Commission: s.Commission,
		})
	}
	return plan
}

// totalCommission is the amount the ledger records as the platform's share.
func (p Plan) totalCommission() int64 {
	switch p.Kind {
	case SingleMerchant:
		return p.Single.Commission
	default:
		var total int64
		for _, payout := range p.Multi.Payouts {
			total += payout.Commission
		}
		return total
	}
}
