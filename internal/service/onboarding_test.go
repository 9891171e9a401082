package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tillgate/marketplace/internal/models"
)

func TestSignup_CreatesCustomerAndProfile(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user, err := env.onboarding.Signup(ctx, "jane@example.com", "Jane")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user id to be assigned")
	}

	if len(env.gw.Customers) != 1 {
		t.Fatalf("expected 1 gateway customer, got %d", len(env.gw.Customers))
	}
	if env.gw.Customers[0].Email != "jane@example.com" {
		t.Errorf("customer email = %q", env.gw.Customers[0].Email)
	}

	profile, err := env.store.GetBuyerProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetBuyerProfile failed: %v", err)
	}
	if profile.GatewayCustomerRef == "" {
		t.Error("expected the gateway customer ref to be persisted")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	if _, err := env.onboarding.Signup(ctx, "jane@example.com", "Jane"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	_, err := env.onboarding.Signup(ctx, "jane@example.com", "Jane Again")
	if !errors.Is(err, models.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if len(env.gw.Customers) != 1 {
		t.Errorf("duplicate signup must not provision a second customer, got %d", len(env.gw.Customers))
	}
}

func TestBecomeSeller_PopulatesProfileFromGateway(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user, err := env.onboarding.Signup(ctx, "s@example.com", "Sam")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := env.onboarding.BecomeSeller(ctx, user.ID, "US", "Sam's Shop"); err != nil {
		t.Fatalf("BecomeSeller failed: %v", err)
	}

	profile, err := env.store.GetSellerProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetSellerProfile failed: %v", err)
	}
	if profile.MerchantAccountRef == "" {
		t.Error("expected the merchant account ref to be persisted")
	}
	if !profile.ChargesEnabled || !profile.PayoutsEnabled {
		t.Error("expected capability flags from the gateway response")
	}
	if profile.PayoutCurrency != "usd" {
		t.Errorf("payout currency = %q, want usd", profile.PayoutCurrency)
	}
	if profile.Verification != models.VerificationVerified {
		t.Errorf("verification = %q, want VERIFIED", profile.Verification)
	}
	if profile.CommissionPercentage != DefaultCommissionPercentage {
		t.Errorf("commission pct = %d, want %d", profile.CommissionPercentage, DefaultCommissionPercentage)
	}

	if len(env.gw.Accounts) != 1 {
		t.Fatalf("expected 1 gateway account, got %d", len(env.gw.Accounts))
	}
	if env.gw.Accounts[0].Country != "US" || env.gw.Accounts[0].BusinessName != "Sam's Shop" {
		t.Errorf("unexpected account request: %+v", env.gw.Accounts[0])
	}
}

func TestBecomeSeller_TwiceFails(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user, err := env.onboarding.Signup(ctx, "s@example.com", "Sam")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := env.onboarding.BecomeSeller(ctx, user.ID, "US", "Sam's Shop"); err != nil {
		t.Fatalf("BecomeSeller failed: %v", err)
	}
	first, err := env.store.GetSellerProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetSellerProfile failed: %v", err)
	}

	_, err = env.onboarding.BecomeSeller(ctx, user.ID, "US", "Sam's Second Shop")
	var already *models.AlreadySellerError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadySellerError, got %v", err)
	}
	if already.UserID != user.ID {
		t.Errorf("error user id = %s, want %s", already.UserID, user.ID)
	}

	// No second profile, no second gateway account.
	if len(env.gw.Accounts) != 1 {
		t.Errorf("expected 1 gateway account, got %d", len(env.gw.Accounts))
	}
	second, err := env.store.GetSellerProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetSellerProfile failed: %v", err)
	}
	if second.ID != first.ID || second.MerchantAccountRef != first.MerchantAccountRef {
		t.Error("seller profile changed on the second attempt")
	}
}

func TestCreateItem_RequiresSeller(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user, err := env.onboarding.Signup(ctx, "b@example.com", "Bea")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	_, err = env.listing.CreateItem(ctx, user.ID, "lamp", 1500, "usd")
	if !errors.Is(err, models.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
}
