package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createBridgeRequestTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE bridge_requests (
		request_id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		token TEXT NOT NULL,
		amount TEXT NOT NULL,
		fee TEXT NOT NULL DEFAULT '0',
		source_chain_id INTEGER NOT NULL,
		dest_chain_id INTEGER NOT NULL,
		chain_id INTEGER NOT NULL,
		tx_hash TEXT NOT NULL UNIQUE,
		timestamp DATETIME,
		status TEXT NOT NULL,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createChainConfigTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE chain_configs (
		chain_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 0,
		remote_bridge TEXT,
		gas_limit INTEGER,
		gas_price TEXT DEFAULT '0',
		min_amount TEXT NOT NULL,
		max_amount TEXT NOT NULL,
		daily_volume TEXT NOT NULL DEFAULT '0',
		max_daily_volume TEXT NOT NULL,
		last_reset_time DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTokenConfigTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE token_configs (
		token TEXT PRIMARY KEY,
		symbol TEXT,
		enabled BOOLEAN NOT NULL DEFAULT 0,
		min_amount TEXT NOT NULL,
		max_amount TEXT NOT NULL,
		max_daily_volume TEXT NOT NULL,
		fee_rate_bps INTEGER NOT NULL DEFAULT 0,
		min_fee TEXT NOT NULL DEFAULT '0',
		max_fee TEXT NOT NULL DEFAULT '0',
		daily_volume TEXT NOT NULL DEFAULT '0',
		last_reset_time DATETIME,
		total_transferred TEXT NOT NULL DEFAULT '0',
		total_fees_collected TEXT NOT NULL DEFAULT '0',
		transaction_count INTEGER NOT NULL DEFAULT 0,
		average_transaction_value TEXT NOT NULL DEFAULT '0',
		completed_count INTEGER NOT NULL DEFAULT 0,
		cancelled_count INTEGER NOT NULL DEFAULT 0,
		success_rate_bps INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createDynamicFeeTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE dynamic_fees (
		chain_id INTEGER PRIMARY KEY,
		base_fee_bps INTEGER NOT NULL,
		market_condition_factor INTEGER NOT NULL DEFAULT 0,
		network_congestion INTEGER NOT NULL DEFAULT 0,
		adjustment_threshold_bps INTEGER NOT NULL,
		min_fee_bps INTEGER NOT NULL DEFAULT 0,
		max_fee_bps INTEGER NOT NULL,
		transaction_volume INTEGER NOT NULL DEFAULT 0,
		network_activity INTEGER NOT NULL DEFAULT 0,
		last_update_time DATETIME,
		enabled BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE fee_history_entries (
		id TEXT PRIMARY KEY,
		chain_id INTEGER NOT NULL,
		fee_bps INTEGER NOT NULL,
		recorded_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE fee_adjustments (
		id TEXT PRIMARY KEY,
		chain_id INTEGER NOT NULL,
		old_fee_bps INTEGER NOT NULL,
		new_fee_bps INTEGER NOT NULL,
		reason TEXT,
		adjusted_at DATETIME
	);`)
}

func createValidatorTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE validators (
		address TEXT PRIMARY KEY,
		added_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE merkle_roots (
		chain_id INTEGER PRIMARY KEY,
		root TEXT NOT NULL,
		expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createBalanceTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE balances (
		token TEXT NOT NULL,
		account TEXT NOT NULL,
		amount TEXT NOT NULL DEFAULT '0',
		updated_at DATETIME,
		PRIMARY KEY (token, account)
	);`)
}

func createSettingsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE bridge_settings (
		id INTEGER PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		current_chain_id INTEGER NOT NULL,
		transaction_timeout INTEGER NOT NULL,
		fee_percentage_bps INTEGER NOT NULL,
		minimum_amount TEXT NOT NULL,
		maximum_amount TEXT NOT NULL,
		fee_recipient TEXT NOT NULL,
		escrow_account TEXT NOT NULL,
		threshold INTEGER NOT NULL DEFAULT 1,
		validator_count INTEGER NOT NULL DEFAULT 0,
		total_transactions INTEGER NOT NULL DEFAULT 0,
		pending_transactions INTEGER NOT NULL DEFAULT 0,
		completed_transactions INTEGER NOT NULL DEFAULT 0,
		cancelled_transactions INTEGER NOT NULL DEFAULT 0,
		total_volume TEXT NOT NULL DEFAULT '0',
		total_fees_collected TEXT NOT NULL DEFAULT '0',
		updated_at DATETIME
	);`)
}

func createAllBridgeTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	createBridgeRequestTable(t, db)
	createChainConfigTable(t, db)
	createTokenConfigTable(t, db)
	createDynamicFeeTables(t, db)
	createValidatorTables(t, db)
	createBalanceTable(t, db)
	createSettingsTable(t, db)
}
