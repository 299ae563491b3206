package models

import "time"

// CheckoutOrder is the local copy of an order created at the payment gateway.
type CheckoutOrder struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	PlanType  string    `db:"plan_type" json:"plan_type"`
	Amount    int64     `db:"amount" json:"amount"`
	Currency  string    `db:"currency" json:"currency"`
	Receipt   string    `db:"receipt" json:"receipt"`
	Status    string    `db:"status" json:"status"` // created, paid, expired
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusExpired = "expired"
)

// CheckoutState is the position of a checkout attempt:
// plan_selected -> order_created -> payment_confirmed | failed.
type CheckoutState string

const (
	CheckoutPlanSelected     CheckoutState = "plan_selected"
	CheckoutOrderCreated     CheckoutState = "order_created"
	CheckoutPaymentConfirmed CheckoutState = "payment_confirmed"
	CheckoutFailed           CheckoutState = "failed"
)
