package gateway

import (
	"context"
	"fmt"
	"sync"
)

// Ensure Fake implements Gateway
var _ Gateway = (*Fake)(nil)

// Fake is an in-memory Gateway for tests and dry-run serving. It hands out
// deterministic refs and records every request it sees.
type Fake struct {
	mu  sync.Mutex
	seq int

	// Fee is deducted from every charge's balance net. Zero by default so
	// tests can reason about exact amounts; set it to exercise fee
	// accounting.
	Fee int64

	// ChargeErr, when set, fails the next CreateCharge call.
	ChargeErr error

	// FailTransferAt fails the Nth CreateTransfer call (1-based) when
	// non-zero, simulating a partial multi-merchant settlement.
	FailTransferAt int

	Customers []CustomerRequest
	Accounts  []AccountRequest
	Charges   []ChargeRequest
	Transfers []TransferRequest
}

func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_fake_%d", prefix, f.seq)
}

func (f *Fake) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Customers = append(f.Customers, req)
	return &Customer{Ref: f.next("cus")}, nil
}

func (f *Fake) CreateMerchantAccount(ctx context.Context, req AccountRequest) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Accounts = append(f.Accounts, req)
	return &Account{
		Ref:                 f.next("acct"),
		ChargesEnabled:      true,
		PayoutsEnabled:      true,
		DefaultCurrency:     "usd",
		VerificationPending: false,
	}, nil
}

func (f *Fake) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ChargeErr != nil {
		err := f.ChargeErr
		f.ChargeErr = nil
		return nil, err
	}
	f.Charges = append(f.Charges, req)
	ch := &Charge{
		Ref:             f.next("ch"),
		BalanceAmount:   req.Amount,
		BalanceCurrency: req.Currency,
		Fee:             f.Fee,
		Net:             req.Amount - f.Fee,
	}
	if req.Destination != nil {
		ch.TransferRef = f.next("tr")
	}
	return ch, nil
}

func (f *Fake) CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailTransferAt > 0 && len(f.Transfers)+1 == f.FailTransferAt {
		return nil, fmt.Errorf("fake gateway: transfer %d refused", f.FailTransferAt)
	}
	f.Transfers = append(f.Transfers, req)
	return &Transfer{Ref: f.next("tr")}, nil
}
