// Package queue carries notification events over the message broker.
// Settlement and moderation produce events; the consumer persists them
// as in-app notifications. The broker decouples the financial
// transactions from delivery, so a slow or absent broker never blocks
// a settlement commit.
package queue

// NotificationEvent is published whenever the platform wants to tell an
// account something: auction won, auction settled, proof verified,
// listing approved or rejected. It carries everything the consumer
// needs to persist the notification without querying the primary
// database.
type NotificationEvent struct {
	AccountID uint64 `json:"account_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	SentAt    string `json:"sent_at"`
}
