package transfer

import (
	"strings"

	"github.com/maheshrc27/myblog/internal/models"
)

// CheckoutCallback carries the query parameters of the gateway's success redirect.
type CheckoutCallback struct {
	PaymentID string `query:"payment_id"`
	OrderID   string `query:"order_id"`
	Signature string `query:"signature"`
	PlanType  string `query:"plan_type"`
}

// Complete reports whether every correlated field is present.
func (cb CheckoutCallback) Complete() bool {
	for _, v := range []string{cb.PaymentID, cb.OrderID, cb.Signature, cb.PlanType} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type CheckoutOrder struct {
	OrderID     string               `json:"order_id"`
	Amount      int64                `json:"amount"`
	AmountMajor string               `json:"amount_display"`
	Currency    string               `json:"currency"`
	Key         string               `json:"key"`
	PlanType    string               `json:"plan_type"`
	Receipt     string               `json:"receipt"`
	State       models.CheckoutState `json:"state"`
}

type CheckoutResult struct {
	State        models.CheckoutState  `json:"state"`
	Payment      *models.PaymentRecord `json:"payment"`
	Subscription *models.Subscription  `json:"subscription"`
	Replayed     bool                  `json:"replayed"`
}

type PlanView struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Price            string          `json:"price"`
	MonthlyPostQuota string          `json:"monthly_posts"`
	Features         map[string]bool `json:"features"`
}

type Dashboard struct {
	Subscription *models.Subscription    `json:"subscription"`
	Payments     []*models.PaymentRecord `json:"payments"`
}
