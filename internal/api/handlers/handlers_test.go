package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/myblog/internal/models"
	"github.com/maheshrc27/myblog/internal/service"
	"github.com/maheshrc27/myblog/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Plans() []models.Plan {
	args := m.Called()
	return args.Get(0).([]models.Plan)
}

func (m *MockCheckoutService) CreateOrder(ctx context.Context, userID int64, planType string) (*transfer.CheckoutOrder, error) {
	args := m.Called(ctx, userID, planType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.CheckoutOrder), args.Error(1)
}

func (m *MockCheckoutService) Confirm(ctx context.Context, userID int64, cb transfer.CheckoutCallback) (*transfer.CheckoutResult, error) {
	args := m.Called(ctx, userID, cb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.CheckoutResult), args.Error(1)
}

func (m *MockCheckoutService) Dashboard(ctx context.Context, userID int64) (*transfer.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Dashboard), args.Error(1)
}

func newTestApp(svc service.CheckoutService, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})

	payment := NewPaymentHandler(svc)
	subscription := NewSubscriptionHandler(svc)
	app.Get("/subscription", subscription.Plans)
	app.Get("/dashboard", subscription.Dashboard)
	app.Get("/payment/success", payment.PaymentSuccess)
	app.Get("/payment/error", payment.PaymentError)
	app.Get("/payment/:plan_type", payment.Payment)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func redirectMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/subscription", loc.Path)
	return loc.Query().Get("message")
}

func TestPaymentHandler_Payment(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("CreateOrder", mock.Anything, int64(1), "premium").Return(&transfer.CheckoutOrder{
		OrderID:     "order_1",
		Amount:      29900,
		AmountMajor: "299.00",
		Currency:    "INR",
		Key:         "rzp_test_key",
		PlanType:    "premium",
		State:       models.CheckoutOrderCreated,
	}, nil)

	resp, err := newTestApp(svc, "1").Test(httptest.NewRequest(http.MethodGet, "/payment/premium", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "order_1", body["order_id"])
	assert.Equal(t, float64(29900), body["amount"])
	assert.Equal(t, "299.00", body["amount_display"])
	assert.Equal(t, "order_created", body["state"])
	svc.AssertExpectations(t)
}

func TestPaymentHandler_Payment_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid plan", service.ErrInvalidPlan, "Please choose a valid subscription plan."},
		{"gateway", errors.Join(service.ErrGateway, errors.New("timeout")), "We could not start your payment. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("CreateOrder", mock.Anything, int64(1), "gold").Return(nil, tt.err)

			resp, err := newTestApp(svc, "1").Test(httptest.NewRequest(http.MethodGet, "/payment/gold", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.want, redirectMessage(t, resp))
		})
	}
}

func TestPaymentHandler_PaymentSuccess(t *testing.T) {
	end := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	cb := transfer.CheckoutCallback{PaymentID: "pay_1", OrderID: "order_1", Signature: "abc", PlanType: "premium"}

	svc := new(MockCheckoutService)
	svc.On("Confirm", mock.Anything, int64(1), cb).Return(&transfer.CheckoutResult{
		State:        models.CheckoutPaymentConfirmed,
		Payment:      &models.PaymentRecord{ID: 1, PaymentID: "pay_1", Amount: 29900},
		Subscription: &models.Subscription{ID: 1, UserID: 1, PlanType: "premium", EndDate: end, IsActive: true},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/payment/success?payment_id=pay_1&order_id=order_1&signature=abc&plan_type=premium", nil)
	resp, err := newTestApp(svc, "1").Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Thank you for subscribing to the premium plan!", body["message"])
	assert.Equal(t, "payment_confirmed", body["state"])
	svc.AssertExpectations(t)
}

func TestPaymentHandler_PaymentSuccess_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"incomplete", service.ErrIncompleteCallback, "Invalid payment details received."},
		{"signature", service.ErrSignatureInvalid, "Payment verification failed. Please contact support."},
		{"mismatch", service.ErrOrderMismatch, "Payment verification failed. Please contact support."},
		{"internal", errors.Join(service.ErrInternal, errors.New("pq: deadlock detected")), "An error occurred while processing your payment. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("Confirm", mock.Anything, int64(1), mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodGet, "/payment/success?payment_id=pay_1&order_id=order_1", nil)
			resp, err := newTestApp(svc, "1").Test(req)
			require.NoError(t, err)

			msg := redirectMessage(t, resp)
			assert.Equal(t, tt.want, msg)
			assert.NotContains(t, msg, "pq:")
		})
	}
}

func TestPaymentHandler_PaymentError(t *testing.T) {
	resp, err := newTestApp(new(MockCheckoutService), "1").Test(httptest.NewRequest(http.MethodGet, "/payment/error", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	assert.NotEmpty(t, decodeBody(t, resp)["error"])
}

func TestSubscriptionHandler_Plans(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Plans").Return(service.NewPlanCatalog().List())

	req := httptest.NewRequest(http.MethodGet, "/subscription?message="+url.QueryEscape("Please choose a valid subscription plan."), nil)
	resp, err := newTestApp(svc, "1").Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Plans   []transfer.PlanView `json:"plans"`
		Message string              `json:"message"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "Please choose a valid subscription plan.", body.Message)
	require.Len(t, body.Plans, 3)
	assert.Equal(t, "99.00", body.Plans[0].Price)
	assert.Equal(t, "30", body.Plans[0].MonthlyPostQuota)
	assert.False(t, body.Plans[0].Features["paywalls"])
	assert.Equal(t, "199.00", body.Plans[1].Price)
	assert.True(t, body.Plans[1].Features["subscriber_conversion"])
	assert.Equal(t, "299.00", body.Plans[2].Price)
	assert.Equal(t, "unlimited", body.Plans[2].MonthlyPostQuota)
	assert.True(t, body.Plans[2].Features["payment_schedules"])
}

func TestSubscriptionHandler_Dashboard(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Dashboard", mock.Anything, int64(5)).Return(&transfer.Dashboard{
		Payments: []*models.PaymentRecord{{ID: 1, PaymentID: "pay_1"}},
	}, nil)

	resp, err := newTestApp(svc, "5").Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Nil(t, body["subscription"])
	assert.Len(t, body["payments"], 1)
}

func TestSubscriptionHandler_Dashboard_Error(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Dashboard", mock.Anything, int64(5)).Return(nil, errors.New("db down"))

	resp, err := newTestApp(svc, "5").Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGetUserID(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatInt(GetUserID(c), 10))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "0", string(body))
}
