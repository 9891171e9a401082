package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/tillgate/marketplace/internal/gateway"
	"github.com/tillgate/marketplace/internal/service"
	"github.com/tillgate/marketplace/internal/storage/sqlite"
)

// setupTestServer creates a test server with an in-memory SQLite database
// and a fake gateway.
func setupTestServer(t *testing.T) (*httptest.Server, *gateway.Fake) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	gw := gateway.NewFake()
	router := NewRouter(
		service.NewSettlementService(store, gw),
		service.NewOnboardingService(store, gw),
		service.NewListingService(store),
		store,
	)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return server, gw
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestAPI_FullSettlementFlow(t *testing.T) {
	server, _ := setupTestServer(t)
	base := server.URL + "/api/v1"

	var seller userResponse
	if code := postJSON(t, base+"/signup", map[string]string{
		"email": "seller@example.com", "name": "Sal",
	}, &seller); code != http.StatusCreated {
		t.Fatalf("signup status = %d", code)
	}

	if code := postJSON(t, fmt.Sprintf("%s/users/%s/become-seller", base, seller.ID), map[string]string{
		"country": "US", "business_name": "Sal's",
	}, nil); code != http.StatusOK {
		t.Fatalf("become-seller status = %d", code)
	}

	var item itemResponse
	if code := postJSON(t, base+"/items", map[string]any{
		"seller_id": seller.ID, "title": "desk", "price": 1000, "currency": "usd",
	}, &item); code != http.StatusCreated {
		t.Fatalf("create item status = %d", code)
	}

	var buyer userResponse
	if code := postJSON(t, base+"/signup", map[string]string{
		"email": "buyer@example.com", "name": "Bo",
	}, &buyer); code != http.StatusCreated {
		t.Fatalf("signup status = %d", code)
	}

	var txn transactionResponse
	if code := postJSON(t, base+"/transactions", map[string]any{
		"buyer_id": buyer.ID, "item_ids": []string{item.ID},
	}, &txn); code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", code)
	}

	if txn.GrossAmount != 1000 || txn.Commission.Amount != 100 {
		t.Errorf("gross/commission = %d/%d, want 1000/100", txn.GrossAmount, txn.Commission.Amount)
	}
	if len(txn.Transfers) != 1 || txn.Transfers[0].Amount != 900 {
		t.Errorf("unexpected transfers: %+v", txn.Transfers)
	}
	if len(txn.SellerIDs) != 1 || txn.SellerIDs[0] != seller.ID {
		t.Errorf("seller ids = %v, want [%s]", txn.SellerIDs, seller.ID)
	}

	// Read it back through the typed query route.
	resp, err := http.Get(fmt.Sprintf("%s/transactions/%s", base, txn.ID))
	if err != nil {
		t.Fatalf("GET transaction failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get transaction status = %d", resp.StatusCode)
	}
}

func TestAPI_AlreadySoldConflict(t *testing.T) {
	server, _ := setupTestServer(t)
	base := server.URL + "/api/v1"

	var seller userResponse
	postJSON(t, base+"/signup", map[string]string{"email": "s@example.com", "name": "S"}, &seller)
	postJSON(t, fmt.Sprintf("%s/users/%s/become-seller", base, seller.ID), map[string]string{"country": "US", "business_name": "S"}, nil)

	var item itemResponse
	postJSON(t, base+"/items", map[string]any{"seller_id": seller.ID, "title": "x", "price": 500, "currency": "usd"}, &item)

	var buyer userResponse
	postJSON(t, base+"/signup", map[string]string{"email": "b@example.com", "name": "B"}, &buyer)

	order := map[string]any{"buyer_id": buyer.ID, "item_ids": []string{item.ID}}
	if code := postJSON(t, base+"/transactions", order, nil); code != http.StatusCreated {
		t.Fatalf("first purchase status = %d", code)
	}

	var errBody struct {
		Error   string   `json:"error"`
		ItemIDs []string `json:"item_ids"`
	}
	if code := postJSON(t, base+"/transactions", order, &errBody); code != http.StatusConflict {
		t.Fatalf("second purchase status = %d, want 409", code)
	}
	if len(errBody.ItemIDs) != 1 || errBody.ItemIDs[0] != item.ID {
		t.Errorf("error item_ids = %v, want [%s]", errBody.ItemIDs, item.ID)
	}
}

func TestAPI_BecomeSellerTwice(t *testing.T) {
	server, _ := setupTestServer(t)
	base := server.URL + "/api/v1"

	var user userResponse
	postJSON(t, base+"/signup", map[string]string{"email": "s@example.com", "name": "S"}, &user)

	sellerURL := fmt.Sprintf("%s/users/%s/become-seller", base, user.ID)
	body := map[string]string{"country": "US", "business_name": "S"}
	if code := postJSON(t, sellerURL, body, nil); code != http.StatusOK {
		t.Fatalf("first become-seller status = %d", code)
	}
	if code := postJSON(t, sellerURL, body, nil); code != http.StatusConflict {
		t.Fatalf("second become-seller status = %d, want 409", code)
	}
}

func TestAPI_UnknownUserBecomeSeller(t *testing.T) {
	server, _ := setupTestServer(t)

	code := postJSON(t, server.URL+"/api/v1/users/ghost/become-seller",
		map[string]string{"country": "US", "business_name": "X"}, nil)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}
