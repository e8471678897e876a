package repository

import (
	"context"
	"database/sql"

	"github.com/openbid/auction-marketplace/internal/model"
)

const bidColumns = `id, auction_id, bidder_id, bidder_name, amount_cents,
	is_deleted, deleted_at, deleted_by, deletion_reason, created_at`

// BidRepo provides data access to the bids table, the authoritative
// ledger of accepted bids. Inserts happen only inside the lifecycle
// controller's bid transaction.
type BidRepo struct{ DB *sql.DB }

func NewBidRepo(db *sql.DB) *BidRepo { return &BidRepo{DB: db} }

func scanBid(row rowScanner) (model.Bid, error) {
	var b model.Bid
	err := row.Scan(
		&b.ID, &b.AuctionID, &b.BidderID, &b.BidderName, &b.AmountCents,
		&b.IsDeleted, &b.DeletedAt, &b.DeletedBy, &b.DeletionReason, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Bid{}, ErrNotFound
	}
	return b, err
}

// InsertTx appends an accepted bid to the ledger inside tx.
func (r *BidRepo) InsertTx(ctx context.Context, tx *sql.Tx, b model.Bid) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bids (auction_id, bidder_id, bidder_name, amount_cents) VALUES (?,?,?,?)`,
		b.AuctionID, b.BidderID, b.BidderName, b.AmountCents)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// HighestTx returns the current maximum bid for an auction inside tx, or
// ErrNotFound when the ledger holds no live bids. The projection on the
// auction row is always re-derived from this query, never incremented.
func (r *BidRepo) HighestTx(ctx context.Context, tx *sql.Tx, auctionID uint64) (model.Bid, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM bids
		 WHERE auction_id = ?`+ScopeDefault.deletedFilter("")+`
		 ORDER BY amount_cents DESC, created_at ASC LIMIT 1`, auctionID)
	return scanBid(row)
}

// ListByAuction returns an auction's bids ordered by amount descending.
func (r *BidRepo) ListByAuction(ctx context.Context, auctionID uint64, scope Scope) ([]model.Bid, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+bidColumns+` FROM bids
		 WHERE auction_id = ?`+scope.deletedFilter("")+`
		 ORDER BY amount_cents DESC, created_at ASC`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteByAuctionTx hard-deletes an auction's bid history inside tx.
// Republish resets the ledger this way before a new bidding round.
func (r *BidRepo) DeleteByAuctionTx(ctx context.Context, tx *sql.Tx, auctionID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE auction_id = ?`, auctionID)
	return err
}
