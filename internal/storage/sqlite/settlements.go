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

// CreateSettlement writes the transaction, its transfers, its commission,
// and the sold-marking of its items in one database transaction.
//
// The write is idempotent on the gateway charge ref: a retry after an
// ambiguous network outcome finds the existing row and gets it back
// unchanged. Item sold-marking is a compare-and-set on sold_transaction_id;
// a lost race surfaces as *models.ConflictError with every contested item.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Idempotency check on the charge ref.
	var existingID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM transactions WHERE gateway_charge_ref = ?",
		txn.GatewayChargeRef,
	).Scan(&existingID)
	if err == nil {
		tx.Rollback()
		return s.GetTransaction(ctx, existingID)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check charge ref: %w", err)
	}

	// Mark items sold; collect every item that lost the race rather than
	// stopping at the first.
	var conflicted []string
	for _, itemID := range txn.ItemIDs {
		res, err := tx.ExecContext(ctx,
			"UPDATE items SET sold_transaction_id = ? WHERE id = ? AND sold_transaction_id IS NULL",
			txn.ID, itemID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to mark item sold: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n != 1 {
			conflicted = append(conflicted, itemID)
		}
	}
	if len(conflicted) > 0 {
		tx.Rollback()
		// A concurrent retry of this same settlement may have committed
		// between the idempotency check and the CAS; only a different
		// charge touching the items is a real conflict.
		if existing, lookupErr := s.getTransactionByChargeRef(ctx, txn.GatewayChargeRef); lookupErr == nil {
			return existing, nil
		}
		return nil, &models.ConflictError{ItemIDs: conflicted}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, gateway_charge_ref, buyer_id, gross_amount, presentment_currency,
		  settlement_currency, exchange_rate, gateway_fee, net_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.GatewayChargeRef, txn.BuyerID, txn.GrossAmount,
		txn.PresentmentCurrency, txn.SettlementCurrency, txn.ExchangeRate,
		txn.GatewayFee, txn.NetAmount, txn.CreatedAt,
	)
	if isUniqueViolation(err, "transactions.gateway_charge_ref") {
		// Lost an idempotent race: another writer committed this charge
		// ref after our check. Return their row.
		tx.Rollback()
		return s.getTransactionByChargeRef(ctx, txn.GatewayChargeRef)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, itemID := range txn.ItemIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_items (transaction_id, item_id) VALUES (?, ?)",
			txn.ID, itemID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transaction item: %w", err)
		}
	}

	for i := range txn.Transfers {
		tr := &txn.Transfers[i]
		if tr.ID == "" {
			tr.ID = uuid.New().String()
		}
		tr.TransactionID = txn.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transfers (id, transaction_id, gateway_transfer_ref, amount, currency, seller_id) VALUES (?, ?, ?, ?, ?, ?)",
			tr.ID, tr.TransactionID, tr.GatewayTransferRef, tr.Amount, tr.Currency, tr.SellerID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	if txn.Commission == nil {
		return nil, fmt.Errorf("settlement has no commission record")
	}
	txn.Commission.TransactionID = txn.ID
	_, err = tx.ExecContext(ctx,
		"INSERT INTO commissions (transaction_id, amount, net_amount, currency) VALUES (?, ?, ?, ?)",
		txn.ID, txn.Commission.Amount, txn.Commission.NetAmount, txn.Commission.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert commission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return txn, nil
}

// getTransactionByChargeRef resolves a gateway charge ref to its full
// transaction record.
func (s *SQLiteStore) getTransactionByChargeRef(ctx context.Context, chargeRef string) (*models.Transaction, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM transactions WHERE gateway_charge_ref = ?",
		chargeRef,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up charge ref: %w", err)
	}
	return s.GetTransaction(ctx, id)
}

// GetTransaction retrieves a transaction with its items, transfers, and
// commission.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, gateway_charge_ref, buyer_id, gross_amount, presentment_currency,
		        settlement_currency, exchange_rate, gateway_fee, net_amount, created_at
		 FROM transactions WHERE id = ?`,
		id,
	).Scan(&txn.ID, &txn.GatewayChargeRef, &txn.BuyerID, &txn.GrossAmount,
		&txn.PresentmentCurrency, &txn.SettlementCurrency, &txn.ExchangeRate,
		&txn.GatewayFee, &txn.NetAmount, &txn.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id FROM transaction_items WHERE transaction_id = ? ORDER BY item_id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction item: %w", err)
		}
		txn.ItemIDs = append(txn.ItemIDs, itemID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction items: %w", err)
	}

	transferRows, err := s.db.QueryContext(ctx,
		"SELECT id, transaction_id, gateway_transfer_ref, amount, currency, seller_id FROM transfers WHERE transaction_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}
	defer transferRows.Close()

	for transferRows.Next() {
		var tr models.Transfer
		if err := transferRows.Scan(&tr.ID, &tr.TransactionID, &tr.GatewayTransferRef,
			&tr.Amount, &tr.Currency, &tr.SellerID); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		txn.Transfers = append(txn.Transfers, tr)
	}
	if err := transferRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	commission := &models.Commission{}
	err = s.db.QueryRowContext(ctx,
		"SELECT transaction_id, amount, net_amount, currency FROM commissions WHERE transaction_id = ?",
		id,
	).Scan(&commission.TransactionID, &commission.Amount, &commission.NetAmount, &commission.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}
	txn.Commission = commission

	return txn, nil
}
