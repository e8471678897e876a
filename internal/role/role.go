// Package role defines the enumerated account roles and the permitted-action
// matrix used by every moderation endpoint. Handlers never compare role
// strings directly; they ask this package.
package role

// Role is an enumerated account role. The string values are stored in the
// accounts table and carried in the JWT role claim.
type Role string

const (
	Bidder     Role = "Bidder"
	Auctioneer Role = "Auctioneer"
	Admin      Role = "Admin"
	SuperAdmin Role = "Super Admin"
)

// Parse maps a stored or claimed role string onto a Role. The second
// return value is false for unknown names.
func Parse(s string) (Role, bool) {
	switch Role(s) {
	case Bidder, Auctioneer, Admin, SuperAdmin:
		return Role(s), true
	}
	return "", false
}

// Registerable reports whether a role may be chosen at self-registration.
// Admin accounts are only created by existing admins.
func (r Role) Registerable() bool {
	return r == Bidder || r == Auctioneer
}

// CanPlaceBid reports whether the role may bid on auctions.
func (r Role) CanPlaceBid() bool { return r == Bidder }

// CanCreateAuction reports whether the role may list items.
func (r Role) CanCreateAuction() bool { return r == Auctioneer }

// IsAdmin reports whether the role carries the moderation capability set.
func (r Role) IsAdmin() bool { return r == Admin || r == SuperAdmin }

// CanModerate reports whether actor may ban, suspend, soft-delete or
// restore an account holding target. Super Admin is untouchable and
// Admins cannot moderate other admins; only Super Admin reaches Admin
// accounts.
func CanModerate(actor, target Role) bool {
	if !actor.IsAdmin() {
		return false
	}
	if target == SuperAdmin {
		return false
	}
	if actor == Admin && target == Admin {
		return false
	}
	return true
}

// CanRemoveAdmin reports whether actor may demote or remove an Admin
// account entirely.
func CanRemoveAdmin(actor Role) bool { return actor == SuperAdmin }

// CanPurge reports whether actor may physically delete records. Hard
// deletion is irreversible and reserved for Super Admin.
func CanPurge(actor Role) bool { return actor == SuperAdmin }
