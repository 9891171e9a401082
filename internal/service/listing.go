package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tillgate/marketplace/internal/models"
	"github.com/tillgate/marketplace/internal/storage"
)

// ListingService puts items up for sale.
type ListingService struct {
	store storage.Store
}

func NewListingService(store storage.Store) *ListingService {
	return &ListingService{store: store}
}

// CreateItem lists an item for sale. The lister must own a seller profile;
// fails with models.ErrNotSeller otherwise.
func (s *ListingService) CreateItem(ctx context.Context, sellerID, title string, price int64, currency string) (*models.Item, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}

	_, err := s.store.GetSellerProfile(ctx, sellerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", sellerID, models.ErrNotSeller)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check seller profile: %w", err)
	}

	item := &models.Item{
		Title:    title,
		Price:    price,
		Currency: currency,
		SellerID: sellerID,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to persist item: %w", err)
	}

	slog.Info("Item listed", "item_id", item.ID, "seller_id", sellerID, "price", price, "currency", currency)
	return item, nil
}
