package model

import "time"

// Bid is one accepted bid event in the `bids` table. Bids are append
// only: a bid is never mutated after acceptance, removed softly only by
// moderation, and purged in bulk when its auction is republished.
//
// Fields:
//  ID             – primary key identifier.
//  AuctionID      – auction the bid was placed on.
//  BidderID       – account that placed the bid.
//  BidderName     – display-name snapshot taken at acceptance time.
//  AmountCents    – bid amount.
//  IsDeleted      – soft-delete marker.
//  DeletedAt      – when the bid was soft-deleted (nullable).
//  DeletedBy      – who soft-deleted it (nullable).
//  DeletionReason – reason recorded at soft-delete (nullable).
//  CreatedAt      – acceptance timestamp.
type Bid struct {
	ID             uint64     // bids.id
	AuctionID      uint64     // bids.auction_id
	BidderID       uint64     // bids.bidder_id
	BidderName     string     // bids.bidder_name
	AmountCents    int64      // bids.amount_cents
	IsDeleted      bool       // bids.is_deleted
	DeletedAt      *time.Time // bids.deleted_at (nullable)
	DeletedBy      *uint64    // bids.deleted_by (nullable)
	DeletionReason *string    // bids.deletion_reason (nullable)
	CreatedAt      time.Time  // bids.created_at
}
