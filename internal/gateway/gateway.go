// Package gateway defines the payment capability the settlement engine
// depends on. The engine receives a Gateway as an explicit dependency; there
// is no package-level client configured from the environment.
package gateway

import "context"

// CustomerRequest asks the gateway to provision a customer object for a
// buyer.
type CustomerRequest struct {
	Email       string
	Description string
}

// Customer is the gateway's customer record.
type Customer struct {
	Ref string
}

// AccountRequest asks the gateway to provision a merchant (connected)
// account for a seller.
type AccountRequest struct {
	Email        string
	Country      string
	BusinessName string
}

// Account is the gateway's merchant account record.
type Account struct {
	Ref             string
	ChargesEnabled  bool
	PayoutsEnabled  bool
	DefaultCurrency string
	// VerificationPending is true while the gateway still requires
	// information before the account is fully enabled.
	VerificationPending bool
}

// Destination earmarks part of a charge's proceeds for one merchant account
// (a destination charge). The gateway creates the transfer itself.
type Destination struct {
	AccountRef string
	Amount     int64
}

// ChargeRequest charges a customer. Exactly one of Destination or
// TransferGroup is set: a destination charge routes funds to a single
// merchant in one step; a transfer-group charge is followed by separate
// Transfer calls linked by the group token.
type ChargeRequest struct {
	Amount        int64
	Currency      string
	CustomerRef   string
	Destination   *Destination
	TransferGroup string
	Metadata      map[string]string
}

// Charge is the gateway's response to a charge, with the balance breakdown
// expanded. Balance figures are authoritative: the ledger records them
// rather than recomputing locally.
type Charge struct {
	Ref string

	// TransferRef is the transfer the gateway created for a destination
	// charge; empty for transfer-group charges.
	TransferRef string

	BalanceAmount   int64
	BalanceCurrency string
	// ExchangeRate is 0 when the charge settled in its presentment
	// currency.
	ExchangeRate float64
	Fee          int64
	Net          int64
}

// TransferRequest moves part of a charge's proceeds to one merchant account.
type TransferRequest struct {
	Amount         int64
	Currency       string
	DestinationRef string
	TransferGroup  string
	// SourceChargeRef ties the transfer to the originating charge so the
	// gateway can reconcile the group.
	SourceChargeRef string
}

// Transfer is the gateway's transfer record.
type Transfer struct {
	Ref string
}

// Gateway is the external payment capability. All calls are synchronous and
// return gateway-assigned identifiers.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	CreateMerchantAccount(ctx context.Context, req AccountRequest) (*Account, error)
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
}
