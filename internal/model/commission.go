package model

import "time"

// Commission is one settled commission payment in the `commissions`
// table. Rows are appended when an approved payment proof is settled
// and feed the monthly revenue aggregation.
//
// Fields:
//  ID             – primary key identifier.
//  AccountID      – auctioneer the payment came from.
//  AmountCents    – settled amount.
//  IsDeleted      – soft-delete marker.
//  DeletedAt      – when the row was soft-deleted (nullable).
//  DeletedBy      – who soft-deleted it (nullable).
//  DeletionReason – reason recorded at soft-delete (nullable).
//  CreatedAt      – settlement timestamp.
type Commission struct {
	ID             uint64     // commissions.id
	AccountID      uint64     // commissions.account_id
	AmountCents    int64      // commissions.amount_cents
	IsDeleted      bool       // commissions.is_deleted
	DeletedAt      *time.Time // commissions.deleted_at (nullable)
	DeletedBy      *uint64    // commissions.deleted_by (nullable)
	DeletionReason *string    // commissions.deletion_reason (nullable)
	CreatedAt      time.Time  // commissions.created_at
}

// PaymentProof is evidence of a commission payment submitted by an
// auctioneer, stored in the `payment_proofs` table. Only admins move it
// through its statuses; a proof reaching Approved is later settled by
// the proof sweep, which marks it Settled.
//
// Fields:
//  ID             – primary key identifier.
//  AccountID      – auctioneer who submitted the proof.
//  ProofID        – media store identifier of the proof screenshot.
//  ProofURL       – retrieval URL of the proof screenshot.
//  AmountCents    – amount the auctioneer claims to have paid.
//  Status         – Pending, Approved, Rejected or Settled.
//  Comment        – free-form note from the auctioneer.
//  IsDeleted      – soft-delete marker.
//  DeletedAt      – when the proof was soft-deleted (nullable).
//  DeletedBy      – who soft-deleted it (nullable).
//  DeletionReason – reason recorded at soft-delete (nullable).
//  UploadedAt     – submission timestamp.
type PaymentProof struct {
	ID             uint64     // payment_proofs.id
	AccountID      uint64     // payment_proofs.account_id
	ProofID        string     // payment_proofs.proof_public_id
	ProofURL       string     // payment_proofs.proof_url
	AmountCents    int64      // payment_proofs.amount_cents
	Status         string     // payment_proofs.status
	Comment        string     // payment_proofs.comment
	IsDeleted      bool       // payment_proofs.is_deleted
	DeletedAt      *time.Time // payment_proofs.deleted_at (nullable)
	DeletedBy      *uint64    // payment_proofs.deleted_by (nullable)
	DeletionReason *string    // payment_proofs.deletion_reason (nullable)
	UploadedAt     time.Time  // payment_proofs.uploaded_at
}

// Payment proof statuses.
const (
	ProofPending  = "Pending"
	ProofApproved = "Approved"
	ProofRejected = "Rejected"
	ProofSettled  = "Settled"
)
