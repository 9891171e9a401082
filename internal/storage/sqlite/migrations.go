package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: users must be created before the profile and item tables due to
// foreign key constraints; transactions before transfers and commissions.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS buyer_profiles (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE,
    gateway_customer_ref TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS seller_profiles (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE,
    merchant_account_ref TEXT NOT NULL,
    commission_pct INTEGER NOT NULL,
    payout_currency TEXT NOT NULL,
    charges_enabled INTEGER NOT NULL,
    payouts_enabled INTEGER NOT NULL,
    verification TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    price INTEGER NOT NULL,
    currency TEXT NOT NULL,
    seller_id TEXT NOT NULL,
    sold_transaction_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (seller_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    gateway_charge_ref TEXT NOT NULL UNIQUE,
    buyer_id TEXT NOT NULL,
    gross_amount INTEGER NOT NULL,
    presentment_currency TEXT NOT NULL,
    settlement_currency TEXT NOT NULL,
    exchange_rate REAL NOT NULL,
    gateway_fee INTEGER NOT NULL,
    net_amount INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (buyer_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transaction_items (
    transaction_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    PRIMARY KEY (transaction_id, item_id),
    FOREIGN KEY (transaction_id) REFERENCES transactions(id),
    FOREIGN KEY (item_id) REFERENCES items(id)
);

CREATE TABLE IF NOT EXISTS transfers (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    gateway_transfer_ref TEXT NOT NULL,
    amount INTEGER NOT NULL,
    currency TEXT NOT NULL,
    seller_id TEXT NOT NULL,
    FOREIGN KEY (transaction_id) REFERENCES transactions(id),
    FOREIGN KEY (seller_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS commissions (
    transaction_id TEXT PRIMARY KEY,
    amount INTEGER NOT NULL,
    net_amount INTEGER NOT NULL,
    currency TEXT NOT NULL,
    FOREIGN KEY (transaction_id) REFERENCES transactions(id)
);

CREATE INDEX IF NOT EXISTS idx_items_seller_id ON items(seller_id);
CREATE INDEX IF NOT EXISTS idx_items_sold_transaction_id ON items(sold_transaction_id);
CREATE INDEX IF NOT EXISTS idx_transfers_transaction_id ON transfers(transaction_id);
CREATE INDEX IF NOT EXISTS idx_transaction_items_item_id ON transaction_items(item_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
