package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/openbid/auction-marketplace/internal/model"
)

// accountColumns is the column list every account SELECT shares, kept in
// one place so scanAccount stays in sync with the queries.
const accountColumns = `id, user_name, email, password_hash, phone, address,
	profile_image_id, profile_image_url, role, status,
	bank_account_number, bank_account_name, bank_name,
	easypaisa_account_number, paypal_email,
	unpaid_commission_cents, auctions_won, money_spent_cents,
	banned_reason, suspended_reason, suspended_until,
	deleted_at, deleted_by, deletion_reason, created_at`

// AccountRepo provides data access to the accounts table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID, &a.UserName, &a.Email, &a.PasswordHash, &a.Phone, &a.Address,
		&a.ProfileImageID, &a.ProfileImageURL, &a.Role, &a.Status,
		&a.BankAccountNumber, &a.BankAccountName, &a.BankName,
		&a.EasypaisaAccountNumber, &a.PaypalEmail,
		&a.UnpaidCommissionCents, &a.AuctionsWon, &a.MoneySpentCents,
		&a.BannedReason, &a.SuspendedReason, &a.SuspendedUntil,
		&a.DeletedAt, &a.DeletedBy, &a.DeletionReason, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// Create inserts an account and returns its ID. The password must already
// be hashed by the caller.
func (r *AccountRepo) Create(ctx context.Context, a model.Account) (uint64, error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO accounts (user_name, email, password_hash, phone, address,
			profile_image_id, profile_image_url, role,
			bank_account_number, bank_account_name, bank_name,
			easypaisa_account_number, paypal_email)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.UserName, a.Email, a.PasswordHash, a.Phone, a.Address,
		a.ProfileImageID, a.ProfileImageURL, a.Role,
		a.BankAccountNumber, a.BankAccountName, a.BankName,
		a.EasypaisaAccountNumber, a.PaypalEmail)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string, scope Scope) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`+scope.accountFilter("")+` LIMIT 1`,
		email)
	return scanAccount(row)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64, scope Scope) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`+scope.accountFilter("")+` LIMIT 1`,
		id)
	return scanAccount(row)
}

// List returns accounts ordered by registration time, newest first.
func (r *AccountRepo) List(ctx context.Context, scope Scope) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE 1=1`+scope.accountFilter("")+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListRemoved returns soft-deleted accounts for the admin restore view.
func (r *AccountRepo) ListRemoved(ctx context.Context) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE status = 'deleted' ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Leaderboard returns bidders ordered by cumulative spend.
func (r *AccountRepo) Leaderboard(ctx context.Context, limit int) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE money_spent_cents > 0`+ScopeDefault.accountFilter("")+`
		 ORDER BY money_spent_cents DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Ban marks the account banned with a reason.
func (r *AccountRepo) Ban(ctx context.Context, id uint64, reason string) error {
	return r.exactlyOne(ctx,
		`UPDATE accounts SET status = 'banned', banned_reason = ? WHERE id = ?`, reason, id)
}

// Suspend marks the account suspended until the given time.
func (r *AccountRepo) Suspend(ctx context.Context, id uint64, reason string, until time.Time) error {
	return r.exactlyOne(ctx,
		`UPDATE accounts SET status = 'suspended', suspended_reason = ?, suspended_until = ? WHERE id = ?`,
		reason, until, id)
}

// SoftDelete marks the account deleted, recording who removed it and why.
func (r *AccountRepo) SoftDelete(ctx context.Context, id, deletedBy uint64, reason string) error {
	return r.exactlyOne(ctx,
		`UPDATE accounts SET status = 'deleted', deleted_at = UTC_TIMESTAMP(), deleted_by = ?, deletion_reason = ? WHERE id = ?`,
		deletedBy, reason, id)
}

// Restore reactivates a banned, suspended or soft-deleted account and
// clears every moderation field.
func (r *AccountRepo) Restore(ctx context.Context, id uint64) error {
	return r.exactlyOne(ctx,
		`UPDATE accounts SET status = 'active', deleted_at = NULL, deleted_by = NULL,
			deletion_reason = NULL, banned_reason = NULL, suspended_reason = NULL, suspended_until = NULL
		 WHERE id = ?`, id)
}

// HardDelete physically removes an account. Irreversible; Super Admin only,
// enforced by the handler.
func (r *AccountRepo) HardDelete(ctx context.Context, id uint64) error {
	return r.exactlyOne(ctx, `DELETE FROM accounts WHERE id = ?`, id)
}

// ApplyWinTx credits a settlement to the winning bidder inside tx.
func (r *AccountRepo) ApplyWinTx(ctx context.Context, tx *sql.Tx, bidderID uint64, amountCents int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET auctions_won = auctions_won + 1, money_spent_cents = money_spent_cents + ? WHERE id = ?`,
		amountCents, bidderID)
	return err
}

// ReverseWinTx undoes exactly one ApplyWinTx for amountCents. Used by
// republish, which must leave the bidder as if the prior round never
// happened.
func (r *AccountRepo) ReverseWinTx(ctx context.Context, tx *sql.Tx, bidderID uint64, amountCents int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET auctions_won = auctions_won - 1, money_spent_cents = money_spent_cents - ? WHERE id = ?`,
		amountCents, bidderID)
	return err
}

// AddCommissionTx posts a commission obligation against the auctioneer.
// A negative amount reverses a prior posting.
func (r *AccountRepo) AddCommissionTx(ctx context.Context, tx *sql.Tx, accountID uint64, amountCents int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET unpaid_commission_cents = unpaid_commission_cents + ? WHERE id = ?`,
		amountCents, accountID)
	return err
}

// SettleCommissionTx reduces the unpaid balance by a settled proof amount,
// flooring at zero so an over-payment never drives the balance negative.
func (r *AccountRepo) SettleCommissionTx(ctx context.Context, tx *sql.Tx, accountID uint64, amountCents int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET unpaid_commission_cents = GREATEST(unpaid_commission_cents - ?, 0) WHERE id = ?`,
		amountCents, accountID)
	return err
}

// RegistrationStat is one month/role bucket of account signups.
type RegistrationStat struct {
	Year  int
	Month int
	Role  string
	Count int64
}

// RegistrationStats groups signups per month and role for the admin
// dashboard.
func (r *AccountRepo) RegistrationStats(ctx context.Context) ([]RegistrationStat, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT YEAR(created_at), MONTH(created_at), role, COUNT(*)
		 FROM accounts WHERE 1=1`+ScopeDefault.accountFilter("")+`
		 GROUP BY YEAR(created_at), MONTH(created_at), role
		 ORDER BY YEAR(created_at), MONTH(created_at)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RegistrationStat
	for rows.Next() {
		var s RegistrationStat
		if err := rows.Scan(&s.Year, &s.Month, &s.Role, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// exactlyOne runs a mutation and maps "no rows touched" to ErrNotFound.
func (r *AccountRepo) exactlyOne(ctx context.Context, query string, args ...any) error {
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
