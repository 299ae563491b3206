package models

import "fmt"

const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// UnlimitedPosts marks a plan without a monthly post quota.
const UnlimitedPosts = -1

type Feature string

const (
	FeatureSubscriberConversion Feature = "subscriber_conversion"
	FeaturePaywalls             Feature = "paywalls"
	FeaturePaymentSchedules     Feature = "payment_schedules"
)

type Plan struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Price            int64     `json:"price"` // minor units (paise)
	MonthlyPostQuota int       `json:"monthly_post_quota"`
	Features         []Feature `json:"features"`
}

func (p Plan) Has(f Feature) bool {
	for _, feature := range p.Features {
		if feature == f {
			return true
		}
	}
	return false
}

func (p Plan) UnlimitedPosts() bool {
	return p.MonthlyPostQuota == UnlimitedPosts
}

// FormatAmount renders an amount in minor units as a major-unit decimal, e.g. 29900 -> "299.00".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
