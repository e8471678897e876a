package repository

import (
	"context"
	"database/sql"

	"github.com/openbid/auction-marketplace/internal/model"
)

const proofColumns = `id, account_id, proof_public_id, proof_url, amount_cents,
	status, comment, is_deleted, deleted_at, deleted_by, deletion_reason, uploaded_at`

// PaymentProofRepo provides data access to the payment_proofs table.
type PaymentProofRepo struct{ DB *sql.DB }

func NewPaymentProofRepo(db *sql.DB) *PaymentProofRepo { return &PaymentProofRepo{DB: db} }

func scanProof(row rowScanner) (model.PaymentProof, error) {
	var p model.PaymentProof
	err := row.Scan(
		&p.ID, &p.AccountID, &p.ProofID, &p.ProofURL, &p.AmountCents,
		&p.Status, &p.Comment, &p.IsDeleted, &p.DeletedAt, &p.DeletedBy,
		&p.DeletionReason, &p.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return model.PaymentProof{}, ErrNotFound
	}
	return p, err
}

// Create inserts a pending proof and returns its ID.
func (r *PaymentProofRepo) Create(ctx context.Context, p model.PaymentProof) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO payment_proofs (account_id, proof_public_id, proof_url, amount_cents, comment)
		 VALUES (?,?,?,?,?)`,
		p.AccountID, p.ProofID, p.ProofURL, p.AmountCents, p.Comment)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one proof.
func (r *PaymentProofRepo) GetByID(ctx context.Context, id uint64, scope Scope) (model.PaymentProof, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+proofColumns+` FROM payment_proofs WHERE id = ?`+scope.deletedFilter("")+` LIMIT 1`, id)
	return scanProof(row)
}

// List returns all proofs for the admin review queue.
func (r *PaymentProofRepo) List(ctx context.Context, scope Scope) ([]model.PaymentProof, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+proofColumns+` FROM payment_proofs WHERE 1=1`+scope.deletedFilter("")+` ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// ListApproved returns proofs awaiting settlement by the proof sweep.
func (r *PaymentProofRepo) ListApproved(ctx context.Context) ([]model.PaymentProof, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+proofColumns+` FROM payment_proofs
		 WHERE status = 'Approved'`+ScopeDefault.deletedFilter("")+` ORDER BY uploaded_at`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

// ListRemoved returns soft-deleted proofs for the admin restore view.
func (r *PaymentProofRepo) ListRemoved(ctx context.Context) ([]model.PaymentProof, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+proofColumns+` FROM payment_proofs WHERE is_deleted = 1 ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r *PaymentProofRepo) scanList(rows *sql.Rows) ([]model.PaymentProof, error) {
	defer rows.Close()
	var out []model.PaymentProof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus sets the admin-reviewed status and amount.
func (r *PaymentProofRepo) UpdateStatus(ctx context.Context, id uint64, status string, amountCents int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE payment_proofs SET status = ?, amount_cents = ? WHERE id = ?`, status, amountCents, id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// ClaimSettlementTx moves an approved proof to Settled inside tx and
// reports whether this caller made the transition. Mirrors the auction
// settlement claim so overlapping proof sweeps apply each proof once.
func (r *PaymentProofRepo) ClaimSettlementTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE payment_proofs SET status = 'Settled' WHERE id = ? AND status = 'Approved'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SoftDelete marks the proof removed.
func (r *PaymentProofRepo) SoftDelete(ctx context.Context, id, deletedBy uint64, reason string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE payment_proofs SET is_deleted = 1, deleted_at = UTC_TIMESTAMP(), deleted_by = ?, deletion_reason = ? WHERE id = ?`,
		deletedBy, reason, id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// HardDelete physically removes the proof.
func (r *PaymentProofRepo) HardDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM payment_proofs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
