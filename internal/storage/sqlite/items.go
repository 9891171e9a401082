package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tillgate/marketplace/internal/models"
)

// CreateItem persists a new listing.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items (id, title, price, currency, seller_id, sold_transaction_id, created_at) VALUES (?, ?, ?, ?, ?, NULL, ?)",
		item.ID, item.Title, item.Price, item.Currency, item.SellerID, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItemsByIDs retrieves the items that exist among ids, preserving the
// requested order. Ids that do not resolve are omitted.
func (s *SQLiteStore) GetItemsByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, price, currency, seller_id, sold_transaction_id, created_at FROM items WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	items := make([]models.Item, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// ListItems returns all listings ordered by creation time.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, price, currency, seller_id, sold_transaction_id, created_at FROM items ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func scanItem(rows *sql.Rows) (models.Item, error) {
	var item models.Item
	var sold sql.NullString
	err := rows.Scan(&item.ID, &item.Title, &item.Price, &item.Currency,
		&item.SellerID, &sold, &item.CreatedAt)
	if err != nil {
		return models.Item{}, err
	}
	if sold.Valid {
		item.SoldTransactionID = sold.String
	}
	return item, nil
}
