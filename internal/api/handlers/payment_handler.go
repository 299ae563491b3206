package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/myblog/internal/service"
	"github.com/maheshrc27/myblog/internal/transfer"
)

type PaymentHandler struct {
	s service.CheckoutService
}

func NewPaymentHandler(service service.CheckoutService) *PaymentHandler {
	return &PaymentHandler{s: service}
}

// Payment creates a gateway order for the plan in the path and returns the
// context the browser needs to open the checkout.
func (h *PaymentHandler) Payment(c *fiber.Ctx) error {
	userID := GetUserID(c)

	order, err := h.s.CreateOrder(c.UserContext(), userID, c.Params("plan_type"))
	if err != nil {
		return redirectToPlans(c, service.UserMessage(err))
	}

	return c.JSON(order)
}

// PaymentSuccess handles the gateway's redirect after the user has paid.
func (h *PaymentHandler) PaymentSuccess(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var cb transfer.CheckoutCallback
	if err := c.QueryParser(&cb); err != nil {
		return redirectToPlans(c, service.UserMessage(service.ErrIncompleteCallback))
	}

	result, err := h.s.Confirm(c.UserContext(), userID, cb)
	if err != nil {
		return redirectToPlans(c, service.UserMessage(err))
	}

	return c.JSON(fiber.Map{
		"message":      fmt.Sprintf("Thank you for subscribing to the %s plan!", result.Subscription.PlanType),
		"state":        result.State,
		"payment":      result.Payment,
		"subscription": result.Subscription,
	})
}

func (h *PaymentHandler) PaymentError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
		"error": "Payment was not completed. Please try again.",
	})
}
