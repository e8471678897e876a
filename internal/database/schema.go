package database

import (
	"context"
	"database/sql"
)

// schema lists the tables required by the marketplace. Statements are
// idempotent so Ensure can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_name VARCHAR(40) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		phone VARCHAR(20) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		profile_image_id VARCHAR(128) NOT NULL DEFAULT '',
		profile_image_url VARCHAR(512) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		bank_account_number VARCHAR(64) NOT NULL DEFAULT '',
		bank_account_name VARCHAR(128) NOT NULL DEFAULT '',
		bank_name VARCHAR(128) NOT NULL DEFAULT '',
		easypaisa_account_number VARCHAR(64) NOT NULL DEFAULT '',
		paypal_email VARCHAR(255) NOT NULL DEFAULT '',
		unpaid_commission_cents BIGINT NOT NULL DEFAULT 0,
		auctions_won BIGINT NOT NULL DEFAULT 0,
		money_spent_cents BIGINT NOT NULL DEFAULT 0,
		banned_reason VARCHAR(255) NULL,
		suspended_reason VARCHAR(255) NULL,
		suspended_until DATETIME NULL,
		deleted_at DATETIME NULL,
		deleted_by BIGINT UNSIGNED NULL,
		deletion_reason VARCHAR(255) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_accounts_email (email),
		KEY idx_accounts_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS auctions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		item_condition VARCHAR(20) NOT NULL DEFAULT '',
		starting_bid_cents BIGINT NOT NULL,
		current_bid_cents BIGINT NOT NULL DEFAULT 0,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		approval_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		rejection_reason VARCHAR(255) NULL,
		created_by BIGINT UNSIGNED NOT NULL,
		highest_bidder_id BIGINT UNSIGNED NULL,
		commission_calculated TINYINT(1) NOT NULL DEFAULT 0,
		is_deleted TINYINT(1) NOT NULL DEFAULT 0,
		deleted_at DATETIME NULL,
		deleted_by BIGINT UNSIGNED NULL,
		deletion_reason VARCHAR(255) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_auctions_owner (created_by),
		KEY idx_auctions_sweep (end_time, commission_calculated, is_deleted),
		KEY idx_auctions_approval (approval_status, is_deleted)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS auction_images (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		auction_id BIGINT UNSIGNED NOT NULL,
		public_id VARCHAR(128) NOT NULL,
		url VARCHAR(512) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_auction_images_auction (auction_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bids (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		auction_id BIGINT UNSIGNED NOT NULL,
		bidder_id BIGINT UNSIGNED NOT NULL,
		bidder_name VARCHAR(40) NOT NULL,
		amount_cents BIGINT NOT NULL,
		is_deleted TINYINT(1) NOT NULL DEFAULT 0,
		deleted_at DATETIME NULL,
		deleted_by BIGINT UNSIGNED NULL,
		deletion_reason VARCHAR(255) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_bids_auction_amount (auction_id, is_deleted, amount_cents)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS commissions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id BIGINT UNSIGNED NOT NULL,
		amount_cents BIGINT NOT NULL,
		is_deleted TINYINT(1) NOT NULL DEFAULT 0,
		deleted_at DATETIME NULL,
		deleted_by BIGINT UNSIGNED NULL,
		deletion_reason VARCHAR(255) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_commissions_account (account_id),
		KEY idx_commissions_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payment_proofs (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id BIGINT UNSIGNED NOT NULL,
		proof_public_id VARCHAR(128) NOT NULL,
		proof_url VARCHAR(512) NOT NULL,
		amount_cents BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'Pending',
		comment VARCHAR(500) NOT NULL DEFAULT '',
		is_deleted TINYINT(1) NOT NULL DEFAULT 0,
		deleted_at DATETIME NULL,
		deleted_by BIGINT UNSIGNED NULL,
		deletion_reason VARCHAR(255) NULL,
		uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_payment_proofs_account (account_id),
		KEY idx_payment_proofs_status (status, is_deleted)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		severity VARCHAR(20) NOT NULL DEFAULT 'info',
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_notifications_account (account_id, is_read, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_account (account_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Ensure creates any missing tables.
func Ensure(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
