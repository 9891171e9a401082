package sqlite

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/tillgate/marketplace/internal/models"
	"github.com/tillgate/marketplace/internal/storage"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return store
}

// seedSettlementFixtures creates a buyer, a seller, and one unsold item.
func seedSettlementFixtures(t *testing.T, store *SQLiteStore) (buyerID, sellerID, itemID string) {
	t.Helper()
	ctx := context.Background()

	buyer := &models.User{Name: "Buyer", Email: "buyer@example.com"}
	if err := store.CreateUser(ctx, buyer, &models.BuyerPaymentProfile{GatewayCustomerRef: "cus_1"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	seller := &models.User{Name: "Seller", Email: "seller@example.com"}
	if err := store.CreateUser(ctx, seller, &models.BuyerPaymentProfile{GatewayCustomerRef: "cus_2"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	profile := &models.SellerProfile{
		UserID:               seller.ID,
		MerchantAccountRef:   "acct_1",
		CommissionPercentage: 10,
		PayoutCurrency:       "usd",
		ChargesEnabled:       true,
		PayoutsEnabled:       true,
		Verification:         models.VerificationVerified,
	}
	if err := store.CreateSellerProfile(ctx, profile); err != nil {
		t.Fatalf("CreateSellerProfile failed: %v", err)
	}

	item := &models.Item{Title: "chair", Price: 1000, Currency: "usd", SellerID: seller.ID}
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	return buyer.ID, seller.ID, item.ID
}

func settlementFor(buyerID, sellerID, itemID, chargeRef string) *models.Transaction {
	return &models.Transaction{
		GatewayChargeRef:    chargeRef,
		BuyerID:             buyerID,
		ItemIDs:             []string{itemID},
		GrossAmount:         1000,
		PresentmentCurrency: "usd",
		SettlementCurrency:  "usd",
		GatewayFee:          0,
		NetAmount:           1000,
		Transfers: []models.Transfer{{
			GatewayTransferRef: "tr_1",
			Amount:             900,
			Currency:           "usd",
			SellerID:           sellerID,
		}},
		Commission: &models.Commission{Amount: 100, NetAmount: 100, Currency: "usd"},
	}
}

func TestCreateSettlement_RoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	buyerID, sellerID, itemID := seedSettlementFixtures(t, store)

	created, err := store.CreateSettlement(ctx, settlementFor(buyerID, sellerID, itemID, "ch_1"))
	if err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	got, err := store.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.GatewayChargeRef != "ch_1" {
		t.Errorf("charge ref = %q, want ch_1", got.GatewayChargeRef)
	}
	if len(got.ItemIDs) != 1 || got.ItemIDs[0] != itemID {
		t.Errorf("item ids = %v, want [%s]", got.ItemIDs, itemID)
	}
	if len(got.Transfers) != 1 || got.Transfers[0].Amount != 900 {
		t.Errorf("unexpected transfers: %+v", got.Transfers)
	}
	if got.Commission == nil || got.Commission.Amount != 100 {
		t.Errorf("unexpected commission: %+v", got.Commission)
	}

	items, err := store.GetItemsByIDs(ctx, []string{itemID})
	if err != nil {
		t.Fatalf("GetItemsByIDs failed: %v", err)
	}
	if items[0].SoldTransactionID != created.ID {
		t.Errorf("item sold ref = %q, want %q", items[0].SoldTransactionID, created.ID)
	}
}

func TestCreateSettlement_IdempotentOnChargeRef(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	buyerID, sellerID, itemID := seedSettlementFixtures(t, store)

	first, err := store.CreateSettlement(ctx, settlementFor(buyerID, sellerID, itemID, "ch_retry"))
	if err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	// A retry with the same charge ref returns the existing record, even
	// though the item is now sold.
	second, err := store.CreateSettlement(ctx, settlementFor(buyerID, sellerID, itemID, "ch_retry"))
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry created a second transaction: %s vs %s", second.ID, first.ID)
	}
	if len(second.Transfers) != 1 || second.Commission == nil {
		t.Errorf("retry did not return the full record: %+v", second)
	}
}

func TestCreateSettlement_ConflictOnSoldItem(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	buyerID, sellerID, itemID := seedSettlementFixtures(t, store)

	if _, err := store.CreateSettlement(ctx, settlementFor(buyerID, sellerID, itemID, "ch_1")); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	// A different charge touching the same item lost the race.
	_, err := store.CreateSettlement(ctx, settlementFor(buyerID, sellerID, itemID, "ch_2"))
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.ItemIDs) != 1 || conflict.ItemIDs[0] != itemID {
		t.Errorf("conflict ids = %v, want [%s]", conflict.ItemIDs, itemID)
	}
}

func TestCreateSettlement_ConcurrentRetrySameChargeRef(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	buyerID, sellerID, itemID := seedSettlementFixtures(t, store)

	// Two racing retries of the same settlement (same charge ref) must
	// both get the one ledger row back, never a constraint error and
	// never a false item conflict.
	var wg sync.WaitGroup
	results := make([]*models.Transaction, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.CreateSettlement(ctx, settlementFor(buyerID, sellerID, itemID, "ch_race"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("writer %d failed: %v", i, errs[i])
		}
	}
	if results[0].ID != results[1].ID {
		t.Errorf("retries produced different transactions: %s vs %s", results[0].ID, results[1].ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := &models.User{Name: "Jane", Email: "jane@example.com"}
	if err := store.CreateUser(ctx, first, &models.BuyerPaymentProfile{GatewayCustomerRef: "cus_1"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	second := &models.User{Name: "Imposter", Email: "jane@example.com"}
	err := store.CreateUser(ctx, second, &models.BuyerPaymentProfile{GatewayCustomerRef: "cus_2"})
	if !errors.Is(err, models.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.GetUser(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetItemsByIDs_OmitsMissing(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	_, _, itemID := seedSettlementFixtures(t, store)

	items, err := store.GetItemsByIDs(ctx, []string{itemID, "missing"})
	if err != nil {
		t.Fatalf("GetItemsByIDs failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != itemID {
		t.Errorf("expected only the existing item, got %+v", items)
	}
}
