// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tillgate/marketplace/internal/models"
)

// ErrNotFound signals that a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the engine consumes. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a user together with their buyer payment
	// profile in one write. IDs are populated if unset.
	CreateUser(ctx context.Context, user *models.User, profile *models.BuyerPaymentProfile) error

	// GetUser retrieves a user by id. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if
	// absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]models.User, error)

	// GetBuyerProfile retrieves a user's buyer payment profile. Returns
	// ErrNotFound if the user never signed up a payment profile.
	GetBuyerProfile(ctx context.Context, userID string) (*models.BuyerPaymentProfile, error)

	// CreateSellerProfile persists a seller profile. The ID is populated
	// if unset.
	CreateSellerProfile(ctx context.Context, profile *models.SellerProfile) error

	// GetSellerProfile retrieves the seller profile owned by userID.
	// Returns ErrNotFound if the user is not a seller.
	GetSellerProfile(ctx context.Context, userID string) (*models.SellerProfile, error)

	// GetSellerProfiles retrieves the seller profiles owned by the given
	// users, keyed by user id. Missing users are simply absent from the
	// map.
	GetSellerProfiles(ctx context.Context, userIDs []string) (map[string]models.SellerProfile, error)

	// CreateItem persists a new listing. The ID is populated if unset.
	CreateItem(ctx context.Context, item *models.Item) error

	// GetItemsByIDs retrieves the items that exist among ids, in the
	// order requested. Ids that do not resolve are omitted; callers
	// detect the missing set.
	GetItemsByIDs(ctx context.Context, ids []string) ([]models.Item, error)

	// ListItems returns all listings.
	ListItems(ctx context.Context) ([]models.Item, error)

	// CreateSettlement writes the transaction, its transfers, its
	// commission, and the sold-marking of its items as one logical unit.
	//
	// Idempotent on GatewayChargeRef: if a transaction with the same
	// charge ref already exists, the existing record is returned and
	// nothing is written. Returns *models.ConflictError if any item
	// transitioned to sold since validation.
	CreateSettlement(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)

	// GetTransaction retrieves a transaction with its transfers and
	// commission. Returns ErrNotFound if absent.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// Close releases any resources held by the store.
	Close() error
}
