package model

import "time"

// Auction represents a listed item as stored in the `auctions` table.
// The bids table is the authoritative ledger; CurrentBidCents and
// HighestBidderID are a derived projection recomputed transactionally
// on each accepted bid, never hand-maintained independently.
//
// Fields:
//  ID                – primary key identifier.
//  Title             – item title.
//  Description       – item description.
//  Category          – free-form category label.
//  Condition         – item condition (New, Used).
//  StartingBidCents  – minimum acceptable first bid.
//  CurrentBidCents   – highest accepted bid so far, 0 when none.
//  StartTime         – opening of the bidding window.
//  EndTime           – close of the bidding window.
//  ApprovalStatus    – moderation state (pending, approved, rejected).
//  RejectionReason   – reason recorded on rejection (nullable).
//  CreatedBy         – auctioneer who listed the item.
//  HighestBidderID   – bidder holding CurrentBidCents (nullable).
//  CommissionCalculated – settlement idempotency flag.
//  IsDeleted         – soft-delete marker.
//  DeletedAt         – when the auction was soft-deleted (nullable).
//  DeletedBy         – who soft-deleted it (nullable).
//  DeletionReason    – reason recorded at soft-delete (nullable).
//  CreatedAt         – timestamp of listing.
type Auction struct {
	ID                   uint64     // auctions.id
	Title                string     // auctions.title
	Description          string     // auctions.description
	Category             string     // auctions.category
	Condition            string     // auctions.item_condition
	StartingBidCents     int64      // auctions.starting_bid_cents
	CurrentBidCents      int64      // auctions.current_bid_cents
	StartTime            time.Time  // auctions.start_time
	EndTime              time.Time  // auctions.end_time
	ApprovalStatus       string     // auctions.approval_status
	RejectionReason      *string    // auctions.rejection_reason (nullable)
	CreatedBy            uint64     // auctions.created_by
	HighestBidderID      *uint64    // auctions.highest_bidder_id (nullable)
	CommissionCalculated bool       // auctions.commission_calculated
	IsDeleted            bool       // auctions.is_deleted
	DeletedAt            *time.Time // auctions.deleted_at (nullable)
	DeletedBy            *uint64    // auctions.deleted_by (nullable)
	DeletionReason       *string    // auctions.deletion_reason (nullable)
	CreatedAt            time.Time  // auctions.created_at
}

// Auction moderation states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// MinimumBidCents returns the amount a new bid must strictly exceed:
// the current bid when bidding has started, the starting bid otherwise.
func (a Auction) MinimumBidCents() int64 {
	if a.CurrentBidCents > 0 {
		return a.CurrentBidCents
	}
	return a.StartingBidCents
}

// AuctionImage is one photo attached to an auction. Each auction
// carries between one and six images; the bytes live in the external
// media store and only the identifier/URL pair is persisted.
type AuctionImage struct {
	ID        uint64 // auction_images.id
	AuctionID uint64 // auction_images.auction_id
	PublicID  string // auction_images.public_id
	URL       string // auction_images.url
}
