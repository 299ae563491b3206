package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/myblog/internal/service"
)

// RegisterCheckoutRoutes mounts the checkout pages. /payment/error stays public
// so a gateway failure redirect lands even after the session has lapsed.
func RegisterCheckoutRoutes(app fiber.Router, svc service.CheckoutService, auth, paymentLimiter fiber.Handler) {
	subscription := NewSubscriptionHandler(svc)
	payment := NewPaymentHandler(svc)

	app.Get("/payment/error", payment.PaymentError)

	app.Get("/subscription", auth, subscription.Plans)
	app.Get("/dashboard", auth, subscription.Dashboard)

	payments := app.Group("/payment", auth, paymentLimiter)
	payments.Get("/success", payment.PaymentSuccess)
	payments.Get("/:plan_type", payment.Payment)
}
