package models

import "time"

type PaymentRecord struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	PaymentID string    `db:"payment_id" json:"payment_id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Amount    int64     `db:"amount" json:"amount"` // minor units
	Currency  string    `db:"currency" json:"currency"`
	Status    string    `db:"status" json:"status"` // completed, failed, pending
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusPending   = "pending"
)
