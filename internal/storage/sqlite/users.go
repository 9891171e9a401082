package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillgate/marketplace/internal/models"
	"github.com/tillgate/marketplace/internal/storage"
)

// CreateUser persists a user and their buyer payment profile in one
// transaction.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User, profile *models.BuyerPaymentProfile) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	profile.UserID = user.ID
	if profile.CreatedAt == 0 {
		profile.CreatedAt = user.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.CreatedAt,
	)
	if isUniqueViolation(err, "users.email") {
		// A concurrent signup won the race between the service's email
		// check and this insert.
		return models.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO buyer_profiles (id, user_id, gateway_customer_ref, created_at) VALUES (?, ?, ?, ?)",
		profile.ID, profile.UserID, profile.GatewayCustomerRef, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert buyer profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *SQLiteStore) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM users WHERE "+column+" = ?",
		value,
	).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, created_at FROM users ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// GetBuyerProfile retrieves the buyer payment profile owned by userID.
func (s *SQLiteStore) GetBuyerProfile(ctx context.Context, userID string) (*models.BuyerPaymentProfile, error) {
	p := &models.BuyerPaymentProfile{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, gateway_customer_ref, created_at FROM buyer_profiles WHERE user_id = ?",
		userID,
	).Scan(&p.ID, &p.UserID, &p.GatewayCustomerRef, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer profile: %w", err)
	}
	return p, nil
}

// CreateSellerProfile persists a seller profile.
func (s *SQLiteStore) CreateSellerProfile(ctx context.Context, profile *models.SellerProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt == 0 {
		profile.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seller_profiles
		 (id, user_id, merchant_account_ref, commission_pct, payout_currency,
		  charges_enabled, payouts_enabled, verification, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.UserID, profile.MerchantAccountRef,
		profile.CommissionPercentage, profile.PayoutCurrency,
		boolToInt(profile.ChargesEnabled), boolToInt(profile.PayoutsEnabled),
		string(profile.Verification), profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert seller profile: %w", err)
	}
	return nil
}

// GetSellerProfile retrieves the seller profile owned by userID.
func (s *SQLiteStore) GetSellerProfile(ctx context.Context, userID string) (*models.SellerProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, merchant_account_ref, commission_pct, payout_currency,
		        charges_enabled, payouts_enabled, verification, created_at
		 FROM seller_profiles WHERE user_id = ?`,
		userID,
	)
	p, err := scanSellerProfile(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}
	return p, nil
}

// GetSellerProfiles retrieves seller profiles for the given users, keyed by
// user id.
func (s *SQLiteStore) GetSellerProfiles(ctx context.Context, userIDs []string) (map[string]models.SellerProfile, error) {
	profiles := make(map[string]models.SellerProfile, len(userIDs))
	for _, id := range userIDs {
		p, err := s.GetSellerProfile(ctx, id)
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles[id] = *p
	}
	return profiles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSellerProfile(row rowScanner) (*models.SellerProfile, error) {
	p := &models.SellerProfile{}
	var charges, payouts int
	var verification string
	err := row.Scan(&p.ID, &p.UserID, &p.MerchantAccountRef, &p.CommissionPercentage,
		&p.PayoutCurrency, &charges, &payouts, &verification, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ChargesEnabled = charges != 0
	p.PayoutsEnabled = payouts != 0
	p.Verification = models.VerificationStatus(verification)
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
