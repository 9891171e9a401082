package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/tillgate/marketplace/internal/models"
)

// validateItems fetches the requested items and checks settlement
// eligibility: every id must resolve, all items must share one currency, and
// none may already be sold. Duplicate ids collapse to one item (requesting
// an item twice cannot double-charge it). Read-only; the first failed check
// aborts with a typed error naming every offending id, not just the first.
func (s *SettlementService) validateItems(ctx context.Context, requested []string) ([]models.Item, error) {
	seen := make(map[string]bool, len(requested))
	itemIDs := make([]string, 0, len(requested))
	for _, id := range requested {
		if !seen[id] {
			seen[id] = true
			itemIDs = append(itemIDs, id)
		}
	}

	items, err := s.store.GetItemsByIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	if len(items) != len(itemIDs) {
		found := make(map[string]bool, len(items))
		for _, it := range items {
			found[it.ID] = true
		}
		var missing []string
		for _, id := range itemIDs {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, &models.NotFoundError{ItemIDs: missing}
	}

	currencies := make(map[string]bool)
	for _, it := range items {
		currencies[it.Currency] = true
	}
	if len(currencies) != 1 {
		var codes []string
		for c := range currencies {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		return nil, &models.CurrencyMismatchError{Currencies: codes}
	}

	var sold []string
	for _, it := range items {
		if it.Sold() {
			sold = append(sold, it.ID)
		}
	}
	if len(sold) > 0 {
		return nil, &models.AlreadySoldError{ItemIDs: sold}
	}

	return items, nil
}

// sellerProfilesFor resolves the seller profile of every item's seller.
// Items can only be listed by sellers, so a missing profile is a data
// integrity failure rather than a validation error.
func (s *SettlementService) sellerProfilesFor(ctx context.Context, items []models.Item) (map[string]models.SellerProfile, error) {
	var sellerIDs []string
	seen := make(map[string]bool)
	for _, it := range items {
		if !seen[it.SellerID] {
			seen[it.SellerID] = true
			sellerIDs = append(sellerIDs, it.SellerID)
		}
	}

	sellers, err := s.store.GetSellerProfiles(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seller profiles: %w", err)
	}
	for _, id := range sellerIDs {
		if _, ok := sellers[id]; !ok {
			return nil, fmt.Errorf("item seller %s has no seller profile", id)
		}
	}
	return sellers, nil
}
