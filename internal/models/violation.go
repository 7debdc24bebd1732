package models

import "time"

type ViolationType string

const (
	ViolationTypePassenger ViolationType = "passenger"
	ViolationTypeDriver    ViolationType = "driver"
)

// ViolationRecord is an append-only ledger row. PaidAt stays nil until the
// record is settled; settlement always picks the oldest unpaid row first.
type ViolationRecord struct {
	ID        string        `json:"id" firestore:"-"`
	UserID    string        `json:"user_id" firestore:"userId"`
	Type      ViolationType `json:"type" firestore:"type"`
	Amount    int64         `json:"amount" firestore:"amount"`
	CreatedAt time.Time     `json:"created_at" firestore:"createdAt"`
	PaidAt    *time.Time    `json:"paid_at" firestore:"paidAt"`
}
