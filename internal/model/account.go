package model

import "time"

// Account represents a marketplace participant as stored in the
// `accounts` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Monetary amounts are stored as integer cents so that settlement
// and republish reversal are exact inverses of each other.
//
// Fields:
//  ID                    – primary key identifier of the account.
//  UserName              – display name shown next to bids.
//  Email                 – unique email address.
//  PasswordHash          – bcrypt hashed password.
//  Phone                 – contact phone number.
//  Address               – postal address.
//  ProfileImageID        – media store identifier of the profile image.
//  ProfileImageURL       – retrieval URL of the profile image.
//  Role                  – role name (Bidder, Auctioneer, Admin, Super Admin).
//  Status                – account status (active, banned, suspended, deleted).
//  BankAccountNumber     – bank transfer destination (optional).
//  BankAccountName       – bank transfer account holder (optional).
//  BankName              – bank transfer bank name (optional).
//  EasypaisaAccountNumber – e-wallet destination (optional).
//  PaypalEmail           – paypal destination (optional).
//  UnpaidCommissionCents – commission owed to the platform.
//  AuctionsWon           – number of auctions this account has won.
//  MoneySpentCents       – cumulative winning-bid spend.
//  BannedReason          – reason recorded when banned (nullable).
//  SuspendedReason       – reason recorded when suspended (nullable).
//  SuspendedUntil        – end of the suspension window (nullable).
//  DeletedAt             – when the account was soft-deleted (nullable).
//  DeletedBy             – moderator who soft-deleted the account (nullable).
//  DeletionReason        – reason recorded at soft-delete (nullable).
//  CreatedAt             – timestamp of registration.
type Account struct {
	ID                     uint64     // accounts.id
	UserName               string     // accounts.user_name
	Email                  string     // accounts.email
	PasswordHash           string     // accounts.password_hash
	Phone                  string     // accounts.phone
	Address                string     // accounts.address
	ProfileImageID         string     // accounts.profile_image_id
	ProfileImageURL        string     // accounts.profile_image_url
	Role                   string     // accounts.role
	Status                 string     // accounts.status
	BankAccountNumber      string     // accounts.bank_account_number
	BankAccountName        string     // accounts.bank_account_name
	BankName               string     // accounts.bank_name
	EasypaisaAccountNumber string     // accounts.easypaisa_account_number
	PaypalEmail            string     // accounts.paypal_email
	UnpaidCommissionCents  int64      // accounts.unpaid_commission_cents
	AuctionsWon            int64      // accounts.auctions_won
	MoneySpentCents        int64      // accounts.money_spent_cents
	BannedReason           *string    // accounts.banned_reason (nullable)
	SuspendedReason        *string    // accounts.suspended_reason (nullable)
	SuspendedUntil         *time.Time // accounts.suspended_until (nullable)
	DeletedAt              *time.Time // accounts.deleted_at (nullable)
	DeletedBy              *uint64    // accounts.deleted_by (nullable)
	DeletionReason         *string    // accounts.deletion_reason (nullable)
	CreatedAt              time.Time  // accounts.created_at
}

// Account status values. A record with StatusDeleted or StatusBanned is
// excluded from default lookups by the repository scope filter.
const (
	StatusActive    = "active"
	StatusBanned    = "banned"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// HasPaymentMethod reports whether at least one payment destination is
// present. Bidders and auctioneers must register one so that settlement
// notifications can carry usable payment details.
func (a Account) HasPaymentMethod() bool {
	return a.BankAccountNumber != "" || a.EasypaisaAccountNumber != "" || a.PaypalEmail != ""
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to an account and contains metadata for expiry
// and revocation. The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  AccountID – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.account_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
