package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/openbid/auction-marketplace/internal/model"
)

const auctionColumns = `id, title, description, category, item_condition,
	starting_bid_cents, current_bid_cents, start_time, end_time,
	approval_status, rejection_reason, created_by, highest_bidder_id,
	commission_calculated, is_deleted, deleted_at, deleted_by,
	deletion_reason, created_at`

// AuctionRepo provides data access to the auctions and auction_images
// tables. The derived bid projection (current_bid_cents,
// highest_bidder_id) is only written inside transactions owned by the
// lifecycle controller.
type AuctionRepo struct{ DB *sql.DB }

func NewAuctionRepo(db *sql.DB) *AuctionRepo { return &AuctionRepo{DB: db} }

func scanAuction(row rowScanner) (model.Auction, error) {
	var a model.Auction
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Category, &a.Condition,
		&a.StartingBidCents, &a.CurrentBidCents, &a.StartTime, &a.EndTime,
		&a.ApprovalStatus, &a.RejectionReason, &a.CreatedBy, &a.HighestBidderID,
		&a.CommissionCalculated, &a.IsDeleted, &a.DeletedAt, &a.DeletedBy,
		&a.DeletionReason, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Auction{}, ErrNotFound
	}
	return a, err
}

func (r *AuctionRepo) scanList(rows *sql.Rows) ([]model.Auction, error) {
	defer rows.Close()
	var out []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts an auction with its images in one transaction so a
// failed image row never leaves a listing without photos.
func (r *AuctionRepo) Create(ctx context.Context, a model.Auction, images []model.AuctionImage) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO auctions (title, description, category, item_condition,
			starting_bid_cents, start_time, end_time, created_by)
		 VALUES (?,?,?,?,?,?,?,?)`,
		a.Title, a.Description, a.Category, a.Condition,
		a.StartingBidCents, a.StartTime, a.EndTime, a.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, img := range images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auction_images (auction_id, public_id, url) VALUES (?,?,?)`,
			id, img.PublicID, img.URL); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one auction.
func (r *AuctionRepo) GetByID(ctx context.Context, id uint64, scope Scope) (model.Auction, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = ?`+scope.deletedFilter("")+` LIMIT 1`, id)
	return scanAuction(row)
}

// GetForUpdateTx fetches one auction inside tx with a row lock. Every
// writer that validates against current_bid_cents goes through this so
// concurrent bids on the same auction are serialized.
func (r *AuctionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64, scope Scope) (model.Auction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = ?`+scope.deletedFilter("")+` LIMIT 1 FOR UPDATE`, id)
	return scanAuction(row)
}

// Images returns the photos attached to an auction.
func (r *AuctionRepo) Images(ctx context.Context, auctionID uint64) ([]model.AuctionImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, auction_id, public_id, url FROM auction_images WHERE auction_id = ? ORDER BY id`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AuctionImage
	for rows.Next() {
		var img model.AuctionImage
		if err := rows.Scan(&img.ID, &img.AuctionID, &img.PublicID, &img.URL); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// ListApproved returns the public browse list: approved, not removed.
func (r *AuctionRepo) ListApproved(ctx context.Context) ([]model.Auction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions
		 WHERE approval_status = 'approved'`+ScopeDefault.deletedFilter("")+`
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// ListByOwner returns an auctioneer's listings. The owner sees their own
// soft-deleted items, so this intentionally passes ScopeIncludeDeleted.
func (r *AuctionRepo) ListByOwner(ctx context.Context, owner uint64) ([]model.Auction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE created_by = ? ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// ListPending returns auctions awaiting moderation.
func (r *AuctionRepo) ListPending(ctx context.Context) ([]model.Auction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions
		 WHERE approval_status = 'pending'`+ScopeDefault.deletedFilter("")+`
		 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// ListRemoved returns soft-deleted auctions for the admin restore view.
func (r *AuctionRepo) ListRemoved(ctx context.Context) ([]model.Auction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE is_deleted = 1 ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// ListEndedUnsettled selects the sweep's work: ended, approved, never
// settled, not removed.
func (r *AuctionRepo) ListEndedUnsettled(ctx context.Context, now time.Time) ([]model.Auction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions
		 WHERE end_time <= ? AND commission_calculated = 0 AND approval_status = 'approved'`+
			ScopeDefault.deletedFilter("")+` ORDER BY end_time`, now)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// UpdateBidStateTx rewrites the derived projection after a bid was
// appended to the ledger inside the same transaction.
func (r *AuctionRepo) UpdateBidStateTx(ctx context.Context, tx *sql.Tx, id uint64, currentBidCents int64, highestBidder uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE auctions SET current_bid_cents = ?, highest_bidder_id = ? WHERE id = ?`,
		currentBidCents, highestBidder, id)
	return err
}

// ClaimSettlementTx flips commission_calculated false->true and reports
// whether this caller won the claim. Overlapping sweep runs race on this
// update; only the one that flips the flag applies financial effects.
// The end_time recheck protects against a republish committing between
// the sweep's listing and its claim: the reopened window makes the claim
// miss, so the live round is never marked settled.
func (r *AuctionRepo) ClaimSettlementTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE auctions SET commission_calculated = 1
		 WHERE id = ? AND commission_calculated = 0 AND end_time <= ?`, id, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ResetForRepublishTx clears the bid projection and settlement flag and
// installs the new bidding window.
func (r *AuctionRepo) ResetForRepublishTx(ctx context.Context, tx *sql.Tx, id uint64, start, end time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE auctions SET start_time = ?, end_time = ?, current_bid_cents = 0,
			highest_bidder_id = NULL, commission_calculated = 0 WHERE id = ?`,
		start, end, id)
	return err
}

// Approve marks a pending auction approved.
func (r *AuctionRepo) Approve(ctx context.Context, id uint64) error {
	return r.exactlyOne(ctx,
		`UPDATE auctions SET approval_status = 'approved', rejection_reason = NULL WHERE id = ?`, id)
}

// Reject marks a pending auction rejected with a reason.
func (r *AuctionRepo) Reject(ctx context.Context, id uint64, reason string) error {
	return r.exactlyOne(ctx,
		`UPDATE auctions SET approval_status = 'rejected', rejection_reason = ? WHERE id = ?`, reason, id)
}

// SoftDelete marks the auction removed.
func (r *AuctionRepo) SoftDelete(ctx context.Context, id, deletedBy uint64, reason string) error {
	return r.exactlyOne(ctx,
		`UPDATE auctions SET is_deleted = 1, deleted_at = UTC_TIMESTAMP(), deleted_by = ?, deletion_reason = ? WHERE id = ?`,
		deletedBy, reason, id)
}

// HardDelete physically removes an auction and its images.
func (r *AuctionRepo) HardDelete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM auction_images WHERE auction_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM auctions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *AuctionRepo) exactlyOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
