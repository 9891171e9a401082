package models

// User represents a registered marketplace account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique).
	Email string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// BuyerPaymentProfile is a user's buyer side: the link to the payment
// gateway's customer object. One per user who has signed up.
type BuyerPaymentProfile struct {
	// ID is the unique identifier for the profile (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// GatewayCustomerRef is the gateway-assigned customer identifier.
	GatewayCustomerRef string

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64
}

// VerificationStatus is the normalized state of a merchant account's
// identity verification at the gateway.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
)

// SellerProfile is a user's merchant side. It is created once by the
// become-seller flow and read, never mutated, by the settlement engine.
type SellerProfile struct {
	// ID is the unique identifier for the profile (UUID format).
	ID string

	// UserID is the owning user. A user owns at most one seller profile.
	UserID string

	// MerchantAccountRef is the gateway-assigned connected account
	// identifier that receives this seller's payouts.
	MerchantAccountRef string

	// CommissionPercentage is the platform's cut of this seller's sales,
	// as a whole percentage in [0, 100].
	CommissionPercentage int64

	// PayoutCurrency is the account's default currency at the gateway
	// (lower-case ISO code, gateway convention).
	PayoutCurrency string

	// ChargesEnabled and PayoutsEnabled mirror the gateway's capability
	// flags at creation time.
	ChargesEnabled bool
	PayoutsEnabled bool

	// Verification is the normalized verification status.
	Verification VerificationStatus

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64
}
