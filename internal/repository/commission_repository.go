package repository

import (
	"context"
	"database/sql"

	"github.com/openbid/auction-marketplace/internal/model"
)

// CommissionRepo provides data access to the commissions table, the
// ledger of settled commission payments.
type CommissionRepo struct{ DB *sql.DB }

func NewCommissionRepo(db *sql.DB) *CommissionRepo { return &CommissionRepo{DB: db} }

// InsertTx appends a settled commission row inside tx.
func (r *CommissionRepo) InsertTx(ctx context.Context, tx *sql.Tx, accountID uint64, amountCents int64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO commissions (account_id, amount_cents) VALUES (?,?)`,
		accountID, amountCents)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByAccount returns an auctioneer's settled commissions.
func (r *CommissionRepo) ListByAccount(ctx context.Context, accountID uint64, scope Scope) ([]model.Commission, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, account_id, amount_cents, is_deleted, deleted_at, deleted_by, deletion_reason, created_at
		 FROM commissions WHERE account_id = ?`+scope.deletedFilter("")+` ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Commission
	for rows.Next() {
		var c model.Commission
		if err := rows.Scan(&c.ID, &c.AccountID, &c.AmountCents, &c.IsDeleted,
			&c.DeletedAt, &c.DeletedBy, &c.DeletionReason, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthlyRevenue sums settled commissions per calendar month of a year.
// The twelve-element result is indexed by month-1; months with no
// revenue stay zero.
func (r *CommissionRepo) MonthlyRevenue(ctx context.Context, year int) ([12]int64, error) {
	var out [12]int64
	rows, err := r.DB.QueryContext(ctx,
		`SELECT MONTH(created_at), COALESCE(SUM(amount_cents), 0)
		 FROM commissions WHERE YEAR(created_at) = ?`+ScopeDefault.deletedFilter("")+`
		 GROUP BY MONTH(created_at)`, year)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var month int
		var sum int64
		if err := rows.Scan(&month, &sum); err != nil {
			return out, err
		}
		if month >= 1 && month <= 12 {
			out[month-1] = sum
		}
	}
	return out, rows.Err()
}
