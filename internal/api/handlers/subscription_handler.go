package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/myblog/internal/models"
	"github.com/maheshrc27/myblog/internal/service"
	"github.com/maheshrc27/myblog/internal/transfer"
)

var allFeatures = []models.Feature{
	models.FeatureSubscriberConversion,
	models.FeaturePaywalls,
	models.FeaturePaymentSchedules,
}

type SubscriptionHandler struct {
	s service.CheckoutService
}

func NewSubscriptionHandler(service service.CheckoutService) *SubscriptionHandler {
	return &SubscriptionHandler{s: service}
}

func (h *SubscriptionHandler) Plans(c *fiber.Ctx) error {
	plans := h.s.Plans()

	views := make([]transfer.PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView(p))
	}

	return c.JSON(fiber.Map{
		"plans":   views,
		"message": c.Query("message"),
	})
}

func (h *SubscriptionHandler) Dashboard(c *fiber.Ctx) error {
	userID := GetUserID(c)

	dashboard, err := h.s.Dashboard(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load subscription details",
		})
	}

	return c.JSON(dashboard)
}

func planView(p models.Plan) transfer.PlanView {
	quota := "unlimited"
	if !p.UnlimitedPosts() {
		quota = strconv.Itoa(p.MonthlyPostQuota)
	}

	features := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		features[string(f)] = p.Has(f)
	}

	return transfer.PlanView{
		ID:               p.ID,
		Name:             p.Name,
		Price:            models.FormatAmount(p.Price),
		MonthlyPostQuota: quota,
		Features:         features,
	}
}
