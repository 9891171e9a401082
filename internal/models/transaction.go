package models

// Transaction is one settlement: a buyer charged once, proceeds distributed
// to one or more sellers. Created exactly once per successful settlement and
// immutable thereafter.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GatewayChargeRef is the gateway's charge identifier. Unique: the
	// ledger writer is idempotent on this key.
	GatewayChargeRef string

	// BuyerID is the user who was charged.
	BuyerID string

	// ItemIDs are the items settled by this transaction.
	ItemIDs []string

	// GrossAmount is the sum of the item prices, in minor units of the
	// presentment currency.
	GrossAmount int64

	// PresentmentCurrency is the currency the buyer was charged in.
	PresentmentCurrency string

	// SettlementCurrency is the currency the gateway settled the balance
	// in; equals the presentment currency when no conversion happened.
	SettlementCurrency string

	// ExchangeRate is the gateway-reported conversion rate, or 0 when no
	// conversion happened.
	ExchangeRate float64

	// GatewayFee is the gateway's processing fee in minor units of the
	// settlement currency.
	GatewayFee int64

	// NetAmount is the gateway-reported balance net (gross minus fee), in
	// minor units of the settlement currency.
	NetAmount int64

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// Transfers are the per-seller payouts, at least one. Loaded with the
	// transaction.
	Transfers []Transfer

	// Commission is the platform's share, exactly one per transaction.
	Commission *Commission
}

// SellerIDs returns the distinct sellers paid by this transaction, in
// transfer order.
func (t *Transaction) SellerIDs() []string {
	seen := make(map[string]bool, len(t.Transfers))
	var ids []string
	for _, tr := range t.Transfers {
		if !seen[tr.SellerID] {
			seen[tr.SellerID] = true
			ids = append(ids, tr.SellerID)
		}
	}
	return ids
}

// Transfer is one seller's payout within a transaction.
type Transfer struct {
	// ID is the unique identifier for the transfer (UUID format).
	ID string

	// TransactionID is the owning transaction.
	TransactionID string

	// GatewayTransferRef is the gateway's transfer identifier. For a
	// destination charge this is the transfer the gateway created as part
	// of the charge itself.
	GatewayTransferRef string

	// Amount is the payout in minor units, net of the seller's commission.
	Amount int64

	// Currency is the lower-case ISO currency code of the payout.
	Currency string

	// SellerID is the recipient. Always one of the sellers supplying at
	// least one item in the owning transaction.
	SellerID string
}

// Commission is the platform's retained share of a transaction.
type Commission struct {
	// TransactionID is the owning transaction (one commission each).
	TransactionID string

	// Amount is the platform's cut of the gross, in minor units.
	Amount int64

	// NetAmount is Amount minus the gateway fee: what the platform
	// actually keeps after the gateway takes its cut.
	NetAmount int64

	// Currency is the lower-case ISO currency code.
	Currency string
}
