package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tillgate/marketplace/internal/gateway"
	"github.com/tillgate/marketplace/internal/metrics"
	"github.com/tillgate/marketplace/internal/models"
	"github.com/tillgate/marketplace/internal/storage"
)

// DefaultCommissionPercentage is the platform's cut for newly onboarded
// sellers.
const DefaultCommissionPercentage = 10

// OnboardingService provisions buyers and sellers: a gateway capability call
// followed by a persistence write.
type OnboardingService struct {
	store   storage.Store
	gateway gateway.Gateway

	// CommissionPercentage applied to sellers created by BecomeSeller.
	CommissionPercentage int64
}

// NewOnboardingService creates an OnboardingService with the default
// commission percentage.
func NewOnboardingService(store storage.Store, gw gateway.Gateway) *OnboardingService {
	return &OnboardingService{
		store:                store,
		gateway:              gw,
		CommissionPercentage: DefaultCommissionPercentage,
	}
}

// Signup registers a user: provisions a gateway customer and persists the
// user with their buyer payment profile.
func (s *OnboardingService) Signup(ctx context.Context, email, name string) (*models.User, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("email and name are required")
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, models.ErrEmailExists
	}

	customer, err := s.gateway.CreateCustomer(ctx, gateway.CustomerRequest{
		Email:       email,
		Description: fmt.Sprintf("Customer for %s", name),
	})
	metrics.GatewayCalls.WithLabelValues("customer", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway customer: %w", err)
	}

	user := &models.User{Name: name, Email: email}
	profile := &models.BuyerPaymentProfile{GatewayCustomerRef: customer.Ref}
	if err := s.store.CreateUser(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	slog.Info("User signed up", "user_id", user.ID, "customer_ref", customer.Ref)
	return user, nil
}

// BecomeSeller provisions a merchant account for an existing user and
// persists the seller profile populated from the gateway's response. Fails
// with *models.AlreadySellerError if the user already owns one; a second
// profile is never created.
func (s *OnboardingService) BecomeSeller(ctx context.Context, userID, country, businessName string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	_, err = s.store.GetSellerProfile(ctx, userID)
	if err == nil {
		return nil, &models.AlreadySellerError{UserID: userID}
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check seller profile: %w", err)
	}

	account, err := s.gateway.CreateMerchantAccount(ctx, gateway.AccountRequest{
		Email:        user.Email,
		Country:      country,
		BusinessName: businessName,
	})
	metrics.GatewayCalls.WithLabelValues("account", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to create merchant account: %w", err)
	}

	verification := models.VerificationVerified
	if account.VerificationPending || !account.ChargesEnabled || !account.PayoutsEnabled {
		verification = models.VerificationPending
	}

	profile := &models.SellerProfile{
		UserID:               userID,
		MerchantAccountRef:   account.Ref,
		CommissionPercentage: s.CommissionPercentage,
		PayoutCurrency:       account.DefaultCurrency,
		ChargesEnabled:       account.ChargesEnabled,
		PayoutsEnabled:       account.PayoutsEnabled,
		Verification:         verification,
	}
	if err := s.store.CreateSellerProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to persist seller profile: %w", err)
	}

	slog.Info("User became seller",
		"user_id", userID,
		"account_ref", account.Ref,
		"verification", string(verification),
	)
	return user, nil
}
