package repository

// Scope controls whether a query sees soft-deleted records. Every SELECT
// in this package builds its removal filter through this type, so there
// is exactly one place encoding the default-exclude rule and no call
// site can leak removed records by forgetting a WHERE clause.
type Scope int

const (
	// ScopeDefault excludes soft-deleted (and for accounts, banned)
	// records. This is what every caller gets unless it explicitly asks
	// otherwise.
	ScopeDefault Scope = iota
	// ScopeIncludeDeleted returns all records regardless of removal state.
	ScopeIncludeDeleted
)

// deletedFilter returns a WHERE fragment (leading " AND ") excluding rows
// whose is_deleted flag is set. alias, when non-empty, prefixes the column.
func (s Scope) deletedFilter(alias string) string {
	if s == ScopeIncludeDeleted {
		return ""
	}
	if alias != "" {
		alias += "."
	}
	return " AND " + alias + "is_deleted = 0"
}

// accountFilter is the account-store variant: accounts signal removal via
// the status column, and banned accounts are hidden from default lookups
// alongside deleted ones.
func (s Scope) accountFilter(alias string) string {
	if s == ScopeIncludeDeleted {
		return ""
	}
	if alias != "" {
		alias += "."
	}
	return " AND " + alias + "status NOT IN ('deleted','banned')"
}
