// Package service implements the settlement engine and the onboarding
// flows. Services receive their storage and gateway dependencies explicitly;
// nothing here reads process environment or holds global clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tillgate/marketplace/internal/gateway"
	"github.com/tillgate/marketplace/internal/metrics"
	"github.com/tillgate/marketplace/internal/models"
	"github.com/tillgate/marketplace/internal/storage"
)

// SettlementService charges buyers and distributes proceeds to sellers.
type SettlementService struct {
	store   storage.Store
	gateway gateway.Gateway
}

// NewSettlementService creates a SettlementService with the given storage
// backend and payment gateway.
func NewSettlementService(store storage.Store, gw gateway.Gateway) *SettlementService {
	return &SettlementService{store: store, gateway: gw}
}

// CreateTransaction settles the purchase of itemIDs by buyerID: validate
// eligibility, select a strategy, drive the gateway, and persist the ledger
// entry. The returned transaction carries its transfers and commission.
//
// Errors follow the settlement taxonomy: validation errors mean nothing
// happened; *models.ChargeFailedError means no funds moved;
// *models.TransferFailedError means a charge exists with a partial transfer
// set and needs reconciliation; *models.ConflictError means funds are
// captured but an item was sold concurrently, and the caller must
// re-validate before retrying.
func (s *SettlementService) CreateTransaction(ctx context.Context, buyerID string, itemIDs []string) (*models.Transaction, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("no items requested")
	}

	items, err := s.validateItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	// From here on, work from the validated set so duplicate requested ids
	// cannot inflate the charge.
	settledIDs := make([]string, len(items))
	for i, it := range items {
		settledIDs[i] = it.ID
	}

	sellers, err := s.sellerProfilesFor(ctx, items)
	if err != nil {
		return nil, err
	}

	buyer, err := s.store.GetBuyerProfile(ctx, buyerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("buyer %s: %w", buyerID, models.ErrNoPaymentProfile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch buyer profile: %w", err)
	}

	plan := selectPlan(items, sellers)
	slog.Info("Settlement plan selected",
		"buyer_id", buyerID,
		"strategy", string(plan.Kind),
		"items", len(items),
		"sellers", len(sellers),
		"gross", plan.Gross,
		"currency", plan.Currency,
	)

	outcome, err := s.executePlan(ctx, buyer.GatewayCustomerRef, plan, settledIDs)
	if err != nil {
		metrics.Settlements.WithLabelValues(string(plan.Kind), "error").Inc()
		return nil, err
	}

	commission := plan.totalCommission()
	// The gateway fee comes out of the platform's share, so transfers plus
	// commission net equal the balance net. A low commission percentage can
	// push the platform's net below zero; the ledger records it as-is.
	commissionNet := commission - outcome.charge.Fee
	if commissionNet < 0 {
		slog.Warn("Gateway fee exceeds commission",
			"charge_ref", outcome.charge.Ref,
			"commission", commission,
			"gateway_fee", outcome.charge.Fee,
			"commission_net", commissionNet,
		)
	}

	txn := &models.Transaction{
		GatewayChargeRef:    outcome.charge.Ref,
		BuyerID:             buyerID,
		ItemIDs:             settledIDs,
		GrossAmount:         plan.Gross,
		PresentmentCurrency: plan.Currency,
		SettlementCurrency:  outcome.charge.BalanceCurrency,
		ExchangeRate:        outcome.charge.ExchangeRate,
		GatewayFee:          outcome.charge.Fee,
		NetAmount:           outcome.charge.Net,
		Transfers:           outcome.transfers,
		Commission: &models.Commission{
			Amount:    commission,
			NetAmount: commissionNet,
			Currency:  plan.Currency,
		},
	}

	persisted, err := s.store.CreateSettlement(ctx, txn)
	if err != nil {
		metrics.Settlements.WithLabelValues(string(plan.Kind), "error").Inc()
		return nil, err
	}
	metrics.Settlements.WithLabelValues(string(plan.Kind), "ok").Inc()

	slog.Info("Settlement recorded",
		"transaction_id", persisted.ID,
		"charge_ref", persisted.GatewayChargeRef,
		"transfers", len(persisted.Transfers),
		"commission", persisted.Commission.Amount,
		"net", persisted.NetAmount,
	)
	return persisted, nil
}

// GetTransaction returns one settlement with its transfers and commission.
func (s *SettlementService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}
