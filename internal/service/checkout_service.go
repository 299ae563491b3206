package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maheshrc27/myblog/internal/metrics"
	"github.com/maheshrc27/myblog/internal/models"
	"github.com/maheshrc27/myblog/internal/repository"
	"github.com/maheshrc27/myblog/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// RenewalWindow is how long a subscription stays valid after each confirmed payment.
const RenewalWindow = 30 * 24 * time.Hour

const (
	receiptSuffixLength = 6
	maxReceiptLength    = 40
)

type CheckoutService interface {
	Plans() []models.Plan
	CreateOrder(ctx context.Context, userID int64, planType string) (*transfer.CheckoutOrder, error)
	Confirm(ctx context.Context, userID int64, cb transfer.CheckoutCallback) (*transfer.CheckoutResult, error)
	Dashboard(ctx context.Context, userID int64) (*transfer.Dashboard, error)
}

// OrderExpiryScheduler arranges for an unpaid order to be expired later.
type OrderExpiryScheduler interface {
	ScheduleOrderExpiry(ctx context.Context, orderID string, after time.Duration) error
}

type CheckoutDeps struct {
	DB        *sql.DB
	Catalog   *PlanCatalog
	Gateway   PaymentGateway
	Orders    repository.CheckoutOrderRepository
	Payments  repository.PaymentRepository
	Subs      repository.SubscriptionRepository
	Scheduler OrderExpiryScheduler
	Metrics   *metrics.CheckoutMetrics
	Logger    zerolog.Logger
	Currency  string
	KeyID     string
	OrderTTL  time.Duration
	Now       func() time.Time
}

type checkoutService struct {
	db        *sql.DB
	catalog   *PlanCatalog
	gateway   PaymentGateway
	orders    repository.CheckoutOrderRepository
	payments  repository.PaymentRepository
	subs      repository.SubscriptionRepository
	scheduler OrderExpiryScheduler
	metrics   *metrics.CheckoutMetrics
	log       zerolog.Logger
	currency  string
	keyID     string
	orderTTL  time.Duration
	now       func() time.Time
}

func NewCheckoutService(d CheckoutDeps) CheckoutService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	catalog := d.Catalog
	if catalog == nil {
		catalog = NewPlanCatalog()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.NewCheckoutMetrics(prometheus.NewRegistry())
	}
	return &checkoutService{
		db:        d.DB,
		catalog:   catalog,
		gateway:   d.Gateway,
		orders:    d.Orders,
		payments:  d.Payments,
		subs:      d.Subs,
		scheduler: d.Scheduler,
		metrics:   m,
		log:       d.Logger.With().Str("component", "checkout").Logger(),
		currency:  d.Currency,
		keyID:     d.KeyID,
		orderTTL:  d.OrderTTL,
		now:       now,
	}
}

func (s *checkoutService) Plans() []models.Plan {
	return s.catalog.List()
}

// CreateOrder moves a checkout from plan_selected to order_created.
func (s *checkoutService) CreateOrder(ctx context.Context, userID int64, planType string) (*transfer.CheckoutOrder, error) {
	logger := s.log.With().Int64("user_id", userID).Str("plan_type", planType).Logger()

	order, err := s.createOrder(ctx, logger, userID, planType)
	s.metrics.RecordOrder(outcome(err))
	if err != nil {
		logger.Error().Err(err).Str("state", string(models.CheckoutFailed)).Msg("order creation failed")
		return nil, err
	}

	logger.Info().
		Str("order_id", order.OrderID).
		Str("state", string(order.State)).
		Msg("order created")
	return order, nil
}

func (s *checkoutService) createOrder(ctx context.Context, logger zerolog.Logger, userID int64, planType string) (*transfer.CheckoutOrder, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}

	plan, err := s.catalog.Lookup(planType)
	if err != nil {
		return nil, err
	}

	receipt, err := s.receipt(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: building receipt: %v", ErrInternal, err)
	}

	notes := map[string]string{
		"user_id":   strconv.FormatInt(userID, 10),
		"plan_type": plan.ID,
	}
	orderID, err := s.gateway.CreateOrder(ctx, plan.Price, s.currency, receipt, notes)
	if err != nil {
		if !errors.Is(err, ErrGateway) {
			err = fmt.Errorf("%w: %v", ErrGateway, err)
		}
		return nil, err
	}

	order := &models.CheckoutOrder{
		OrderID:  orderID,
		UserID:   userID,
		PlanType: plan.ID,
		Amount:   plan.Price,
		Currency: s.currency,
		Receipt:  receipt,
		Status:   models.OrderStatusCreated,
	}
	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: saving order %s: %v", ErrInternal, orderID, err)
	}

	if s.scheduler != nil && s.orderTTL > 0 {
		if err := s.scheduler.ScheduleOrderExpiry(ctx, orderID, s.orderTTL); err != nil {
			logger.Warn().Err(err).Str("order_id", orderID).Msg("could not schedule order expiry")
		}
	}

	return &transfer.CheckoutOrder{
		OrderID:     orderID,
		Amount:      plan.Price,
		AmountMajor: models.FormatAmount(plan.Price),
		Currency:    s.currency,
		Key:         s.keyID,
		PlanType:    plan.ID,
		Receipt:     receipt,
		State:       models.CheckoutOrderCreated,
	}, nil
}

// receipt is unique per user and issue time; the random suffix separates
// attempts made within the same second. The user id is base 36 so any id
// keeps the receipt within maxReceiptLength.
func (s *checkoutService) receipt(userID int64) (string, error) {
	suffix, err := gonanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", receiptSuffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("receipt_%s_%d_%s", strconv.FormatInt(userID, 36), s.now().Unix(), suffix), nil
}

func checkOwner(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: invalid user id %d", ErrInternal, userID)
	}
	return nil
}

// Confirm moves a checkout from order_created to payment_confirmed, or to failed.
func (s *checkoutService) Confirm(ctx context.Context, userID int64, cb transfer.CheckoutCallback) (*transfer.CheckoutResult, error) {
	logger := s.log.With().
		Int64("user_id", userID).
		Str("order_id", cb.OrderID).
		Str("payment_id", cb.PaymentID).
		Str("plan_type", cb.PlanType).
		Logger()

	result, err := s.confirm(ctx, userID, cb)
	label := outcome(err)
	if err == nil && result.Replayed {
		label = "replayed"
	}
	s.metrics.RecordConfirmation(label)

	if err != nil {
		logger.Error().Err(err).Str("state", string(models.CheckoutFailed)).Msg("payment confirmation failed")
		return nil, err
	}

	logger.Info().
		Str("state", string(result.State)).
		Bool("replayed", result.Replayed).
		Time("end_date", result.Subscription.EndDate).
		Msg("payment confirmed")
	return result, nil
}

func (s *checkoutService) confirm(ctx context.Context, userID int64, cb transfer.CheckoutCallback) (*transfer.CheckoutResult, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	if !cb.Complete() {
		return nil, ErrIncompleteCallback
	}
	cb.PaymentID = strings.TrimSpace(cb.PaymentID)
	cb.OrderID = strings.TrimSpace(cb.OrderID)
	cb.Signature = strings.TrimSpace(cb.Signature)

	plan, err := s.catalog.Lookup(cb.PlanType)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.VerifySignature(cb.OrderID, cb.PaymentID, cb.Signature); err != nil {
		if !errors.Is(err, ErrSignatureInvalid) {
			err = fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return nil, err
	}

	result, err := s.settle(ctx, userID, plan, cb)
	if err != nil {
		if errors.Is(err, ErrOrderMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return result, nil
}

// settle records the payment and renews the subscription in one transaction,
// holding the per-user lock for its whole duration.
func (s *checkoutService) settle(ctx context.Context, userID int64, plan models.Plan, cb transfer.CheckoutCallback) (*transfer.CheckoutResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.subs.LockUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	existing, found, err := s.payments.GetByPaymentID(ctx, tx, cb.PaymentID)
	if err != nil {
		return nil, err
	}
	if found {
		return s.replay(ctx, tx, userID, existing, cb)
	}

	order, found, err := s.orders.GetByOrderID(ctx, tx, cb.OrderID)
	if err != nil {
		return nil, err
	}
	if err := matchOrder(order, found, userID, plan); err != nil {
		return nil, err
	}

	payment, err := s.payments.Append(ctx, tx, &models.PaymentRecord{
		UserID:    userID,
		PaymentID: cb.PaymentID,
		OrderID:   cb.OrderID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    models.PaymentStatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.UpsertActive(ctx, tx, userID, plan.ID, s.now().Add(RenewalWindow))
	if err != nil {
		return nil, err
	}

	if err := s.orders.MarkPaid(ctx, tx, cb.OrderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &transfer.CheckoutResult{
		State:        models.CheckoutPaymentConfirmed,
		Payment:      payment,
		Subscription: sub,
	}, nil
}

// replay answers a confirmation whose payment id is already recorded without
// writing anything.
func (s *checkoutService) replay(ctx context.Context, tx *sql.Tx, userID int64, existing *models.PaymentRecord, cb transfer.CheckoutCallback) (*transfer.CheckoutResult, error) {
	if existing.UserID != userID || existing.OrderID != cb.OrderID {
		return nil, fmt.Errorf("%w: payment %s already recorded for another order", ErrOrderMismatch, cb.PaymentID)
	}

	sub, found, err := s.subs.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("payment %s recorded without a subscription", cb.PaymentID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &transfer.CheckoutResult{
		State:        models.CheckoutPaymentConfirmed,
		Payment:      existing,
		Subscription: sub,
		Replayed:     true,
	}, nil
}

func matchOrder(order *models.CheckoutOrder, found bool, userID int64, plan models.Plan) error {
	switch {
	case !found:
		return fmt.Errorf("%w: unknown order", ErrOrderMismatch)
	case order.UserID != userID:
		return fmt.Errorf("%w: order %s belongs to another user", ErrOrderMismatch, order.OrderID)
	case !strings.EqualFold(order.PlanType, plan.ID):
		return fmt.Errorf("%w: order %s was created for plan %s", ErrOrderMismatch, order.OrderID, order.PlanType)
	case order.Status == models.OrderStatusPaid:
		return fmt.Errorf("%w: order %s is already paid", ErrOrderMismatch, order.OrderID)
	}
	return nil
}

func (s *checkoutService) Dashboard(ctx context.Context, userID int64) (*transfer.Dashboard, error) {
	sub, found, err := s.subs.ActiveFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting subscription: %w", err)
	}
	if !found {
		sub = nil
	}

	payments, err := s.payments.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting payments: %w", err)
	}

	return &transfer.Dashboard{Subscription: sub, Payments: payments}, nil
}
