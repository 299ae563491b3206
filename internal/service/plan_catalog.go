package service

import (
	"fmt"
	"strings"

	"github.com/maheshrc27/myblog/internal/models"
)

// PlanCatalog is the fixed set of subscription plans. Prices are in paise.
type PlanCatalog struct {
	plans map[string]models.Plan
	order []string
}

func NewPlanCatalog() *PlanCatalog {
	plans := []models.Plan{
		{
			ID:               models.PlanBasic,
			Name:             "Basic",
			Price:            9900,
			MonthlyPostQuota: 30,
		},
		{
			ID:               models.PlanStandard,
			Name:             "Standard",
			Price:            19900,
			MonthlyPostQuota: 100,
			Features:         []models.Feature{models.FeatureSubscriberConversion},
		},
		{
			ID:               models.PlanPremium,
			Name:             "Premium",
			Price:            29900,
			MonthlyPostQuota: models.UnlimitedPosts,
			Features: []models.Feature{
				models.FeatureSubscriberConversion,
				models.FeaturePaywalls,
				models.FeaturePaymentSchedules,
			},
		},
	}

	c := &PlanCatalog{plans: make(map[string]models.Plan, len(plans))}
	for _, p := range plans {
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

// Lookup finds a plan by identifier, ignoring case and surrounding whitespace.
func (c *PlanCatalog) Lookup(planID string) (models.Plan, error) {
	p, ok := c.plans[strings.ToLower(strings.TrimSpace(planID))]
	if !ok {
		return models.Plan{}, fmt.Errorf("%w: %q", ErrInvalidPlan, planID)
	}
	return p, nil
}

func (c *PlanCatalog) PriceOf(planID string) (int64, error) {
	p, err := c.Lookup(planID)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}

func (c *PlanCatalog) List() []models.Plan {
	out := make([]models.Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}
