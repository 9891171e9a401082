package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmailExists is returned by signup when the email is taken.
	ErrEmailExists = errors.New("email already registered")

	// ErrNoPaymentProfile is returned when a buyer has no payment profile
	// (never signed up through the onboarding flow).
	ErrNoPaymentProfile = errors.New("buyer has no payment profile")

	// ErrNotSeller is returned when a user without a seller profile tries
	// to list an item.
	ErrNotSeller = errors.New("user is not a seller")
)

// NotFoundError reports item ids that did not resolve to records.
type NotFoundError struct {
	ItemIDs []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("items not found: %s", strings.Join(e.ItemIDs, ", "))
}

// CurrencyMismatchError reports that the requested items are priced in more
// than one currency.
type CurrencyMismatchError struct {
	Currencies []string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("items priced in multiple currencies: %s", strings.Join(e.Currencies, ", "))
}

// AlreadySoldError names every requested item that already belongs to a
// transaction, not just the first one found.
type AlreadySoldError struct {
	ItemIDs []string
}

func (e *AlreadySoldError) Error() string {
	return fmt.Sprintf("items already sold: %s", strings.Join(e.ItemIDs, ", "))
}

// AlreadySellerError reports that the user already owns a seller profile.
type AlreadySellerError struct {
	UserID string
}

func (e *AlreadySellerError) Error() string {
	return fmt.Sprintf("user %s is already a seller", e.UserID)
}

// ChargeFailedError wraps a gateway failure at the charge step. Nothing was
// persisted and no funds moved.
type ChargeFailedError struct {
	Err error
}

func (e *ChargeFailedError) Error() string {
	return fmt.Sprintf("gateway charge failed: %v", e.Err)
}

func (e *ChargeFailedError) Unwrap() error { return e.Err }

// TransferFailedError reports a partial settlement: the charge succeeded but
// a later transfer call failed. It carries everything a reconciliation
// process needs to complete or compensate the remainder.
type TransferFailedError struct {
	// ChargeRef is the gateway charge that did succeed.
	ChargeRef string

	// CompletedTransferRefs are the gateway transfers issued before the
	// failure, in order.
	CompletedTransferRefs []string

	// SellerID is the seller whose transfer failed.
	SellerID string

	Err error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("gateway transfer to seller %s failed after charge %s (%d transfers completed): %v",
		e.SellerID, e.ChargeRef, len(e.CompletedTransferRefs), e.Err)
}

func (e *TransferFailedError) Unwrap() error { return e.Err }

// ConflictError reports items that transitioned to sold between validation
// and the ledger write. Retryable after re-validating availability.
type ConflictError struct {
	ItemIDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("items sold concurrently: %s", strings.Join(e.ItemIDs, ", "))
}
