package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tillgate/marketplace/internal/gateway"
	"github.com/tillgate/marketplace/internal/metrics"
	"github.com/tillgate/marketplace/internal/models"
)

// chargeOutcome carries the gateway's authoritative settlement figures plus
// the per-seller transfers, ready for the ledger.
type chargeOutcome struct {
	charge    *gateway.Charge
	transfers []models.Transfer
}

// executePlan drives the payment gateway for the selected plan. A failure at
// the charge step returns *models.ChargeFailedError and guarantees no funds
// moved; a failure at a transfer step returns *models.TransferFailedError
// carrying the charge ref and every transfer that did succeed.
func (s *SettlementService) executePlan(ctx context.Context, customerRef string, plan Plan, itemIDs []string) (*chargeOutcome, error) {
	metadata := map[string]string{"item_ids": strings.Join(itemIDs, ",")}

	req := gateway.ChargeRequest{
		Amount:      plan.Gross,
		Currency:    plan.Currency,
		CustomerRef: customerRef,
		Metadata:    metadata,
	}
	if plan.Kind == SingleMerchant {
		req.Destination = &gateway.Destination{
			AccountRef: plan.Single.AccountRef,
			Amount:     plan.Gross - plan.Single.Commission,
		}
	} else {
		req.TransferGroup = plan.Multi.TransferGroup
	}

	ch, err := s.gateway.CreateCharge(ctx, req)
	metrics.GatewayCalls.WithLabelValues("charge", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, &models.ChargeFailedError{Err: err}
	}
	slog.Info("Charge created",
		"charge_ref", ch.Ref,
		"strategy", string(plan.Kind),
		"amount", plan.Gross,
		"currency", plan.Currency,
	)

	if plan.Kind == SingleMerchant {
		return &chargeOutcome{
			charge: ch,
			transfers: []models.Transfer{{
				GatewayTransferRef: ch.TransferRef,
				Amount:             plan.Gross - plan.Single.Commission,
				Currency:           plan.Currency,
				SellerID:           plan.Single.SellerID,
			}},
		}, nil
	}

	// Transfers are issued sequentially after the charge so each can
	// reference the committed charge and the shared group token.
	outcome := &chargeOutcome{charge: ch}
	var completed []string
	for _, payout := range plan.Multi.Payouts {
		tr, err := s.gateway.CreateTransfer(ctx, gateway.TransferRequest{
			Amount:          payout.Amount,
			Currency:        plan.Currency,
			DestinationRef:  payout.AccountRef,
			TransferGroup:   plan.Multi.TransferGroup,
			SourceChargeRef: ch.Ref,
		})
		metrics.GatewayCalls.WithLabelValues("transfer", metrics.Outcome(err)).Inc()
		if err != nil {
			slog.Error("Transfer failed after charge",
				"charge_ref", ch.Ref,
				"seller_id", payout.SellerID,
				"completed_transfers", len(completed),
				"error", err,
			)
			return nil, &models.TransferFailedError{
				ChargeRef:             ch.Ref,
				CompletedTransferRefs: completed,
				SellerID:              payout.SellerID,
				Err:                   err,
			}
		}
		completed = append(completed, tr.Ref)
		outcome.transfers = append(outcome.transfers, models.Transfer{
			GatewayTransferRef: tr.Ref,
			Amount:             payout.Amount,
			Currency:           plan.Currency,
			SellerID:           payout.SellerID,
		})
	}
	return outcome, nil
}
