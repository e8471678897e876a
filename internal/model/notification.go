package model

import "time"

// Notification is one delivered message in the `notifications` table.
// Rows are written by the queue consumer; delivery is fire-and-forget
// from the publishing side and never rolls back the state change that
// triggered it.
type Notification struct {
	ID        uint64    // notifications.id
	AccountID uint64    // notifications.account_id
	Title     string    // notifications.title
	Message   string    // notifications.message
	Severity  string    // notifications.severity
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}

// Notification severities, mirrored in the frontend styling.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)
