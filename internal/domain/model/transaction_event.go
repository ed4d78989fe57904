package model

import "time"

type TransactionEventType string

const (
	TransactionEventCreated TransactionEventType = "transaction.created"
	TransactionEventUpdated TransactionEventType = "transaction.updated"
	TransactionEventDeleted TransactionEventType = "transaction.deleted"
)

// コミット後に外へ流す通知
type TransactionEvent struct {
	EventID     string               `json:"event_id"`
	Type        TransactionEventType `json:"type"`
	Transaction Transaction          `json:"transaction"`
	OccurredAt  time.Time            `json:"occurred_at"`
}
