package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillgate/marketplace/internal/models"
	"github.com/tillgate/marketplace/internal/service"
	"github.com/tillgate/marketplace/internal/storage"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	settlement *service.SettlementService
	onboarding *service.OnboardingService
	listing    *service.ListingService
	store      storage.Store
}

// --- wire types ---

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}

type itemResponse struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Price             int64  `json:"price"`
	Currency          string `json:"currency"`
	SellerID          string `json:"seller_id"`
	SoldTransactionID string `json:"sold_transaction_id,omitempty"`
	CreatedAt         int64  `json:"created_at"`
}

type transferResponse struct {
	ID                 string `json:"id"`
	GatewayTransferRef string `json:"gateway_transfer_ref"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	SellerID           string `json:"seller_id"`
}

type commissionResponse struct {
	Amount    int64  `json:"amount"`
	NetAmount int64  `json:"net_amount"`
	Currency  string `json:"currency"`
}

type transactionResponse struct {
	ID                  string             `json:"id"`
	GatewayChargeRef    string             `json:"gateway_charge_ref"`
	BuyerID             string             `json:"buyer_id"`
	ItemIDs             []string           `json:"item_ids"`
	SellerIDs           []string           `json:"seller_ids"`
	GrossAmount         int64              `json:"gross_amount"`
	PresentmentCurrency string             `json:"presentment_currency"`
	SettlementCurrency  string             `json:"settlement_currency"`
	ExchangeRate        float64            `json:"exchange_rate,omitempty"`
	GatewayFee          int64              `json:"gateway_fee"`
	NetAmount           int64              `json:"net_amount"`
	CreatedAt           int64              `json:"created_at"`
	Transfers           []transferResponse `json:"transfers"`
	Commission          commissionResponse `json:"commission"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toItemResponse(it *models.Item) itemResponse {
	return itemResponse{
		ID:                it.ID,
		Title:             it.Title,
		Price:             it.Price,
		Currency:          it.Currency,
		SellerID:          it.SellerID,
		SoldTransactionID: it.SoldTransactionID,
		CreatedAt:         it.CreatedAt,
	}
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                  t.ID,
		GatewayChargeRef:    t.GatewayChargeRef,
		BuyerID:             t.BuyerID,
		ItemIDs:             t.ItemIDs,
		SellerIDs:           t.SellerIDs(),
		GrossAmount:         t.GrossAmount,
		PresentmentCurrency: t.PresentmentCurrency,
		SettlementCurrency:  t.SettlementCurrency,
		ExchangeRate:        t.ExchangeRate,
		GatewayFee:          t.GatewayFee,
		NetAmount:           t.NetAmount,
		CreatedAt:           t.CreatedAt,
	}
	for _, tr := range t.Transfers {
		resp.Transfers = append(resp.Transfers, transferResponse{
			ID:                 tr.ID,
			GatewayTransferRef: tr.GatewayTransferRef,
			Amount:             tr.Amount,
			Currency:           tr.Currency,
			SellerID:           tr.SellerID,
		})
	}
	if t.Commission != nil {
		resp.Commission = commissionResponse{
			Amount:    t.Commission.Amount,
			NetAmount: t.Commission.NetAmount,
			Currency:  t.Commission.Currency,
		}
	}
	return resp
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// writeEngineError maps the settlement error taxonomy onto HTTP statuses,
// keeping the structured detail (affected ids) so a client can act without
// re-querying.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		notFound    *models.NotFoundError
		mismatch    *models.CurrencyMismatchError
		alreadySold *models.AlreadySoldError
		seller      *models.AlreadySellerError
		charge      *models.ChargeFailedError
		transfer    *models.TransferFailedError
		conflict    *models.ConflictError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":    notFound.Error(),
			"item_ids": notFound.ItemIDs,
		})
	case errors.As(err, &mismatch):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      mismatch.Error(),
			"currencies": mismatch.Currencies,
		})
	case errors.As(err, &alreadySold):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    alreadySold.Error(),
			"item_ids": alreadySold.ItemIDs,
		})
	case errors.As(err, &seller):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   seller.Error(),
			"user_id": seller.UserID,
		})
	case errors.As(err, &charge):
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"error": charge.Error(),
		})
	case errors.As(err, &transfer):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":                   transfer.Error(),
			"charge_ref":              transfer.ChargeRef,
			"completed_transfer_refs": transfer.CompletedTransferRefs,
			"seller_id":               transfer.SellerID,
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     conflict.Error(),
			"item_ids":  conflict.ItemIDs,
			"retryable": true,
		})
	case errors.Is(err, models.ErrEmailExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNotSeller), errors.Is(err, models.ErrNoPaymentProfile):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// --- onboarding ---

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.onboarding.Signup(r.Context(), req.Email, req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handlers) BecomeSeller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country      string `json:"country"`
		BusinessName string `json:"business_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.onboarding.BecomeSeller(r.Context(), chi.URLParam(r, "id"), req.Country, req.BusinessName)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// --- listings ---

func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SellerID string `json:"seller_id"`
		Title    string `json:"title"`
		Price    int64  `json:"price"`
		Currency string `json:"currency"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.listing.CreateItem(r.Context(), req.SellerID, req.Title, req.Price, req.Currency)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := make([]itemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toItemResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- settlements ---

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuyerID string   `json:"buyer_id"`
		ItemIDs []string `json:"item_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BuyerID == "" || len(req.ItemIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "buyer_id and item_ids are required"})
		return
	}

	txn, err := h.settlement.CreateTransaction(r.Context(), req.BuyerID, req.ItemIDs)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.settlement.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(txn))
}

// --- users ---

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
