package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/maheshrc27/myblog/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	args := m.Called(ctx, amount, currency, receipt, notes)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifySignature(orderID, paymentID, signature string) error {
	args := m.Called(orderID, paymentID, signature)
	return args.Error(0)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleOrderExpiry(ctx context.Context, orderID string, after time.Duration) error {
	args := m.Called(ctx, orderID, after)
	return args.Error(0)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *models.CheckoutOrder) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepo) GetByOrderID(ctx context.Context, tx *sql.Tx, orderID string) (*models.CheckoutOrder, bool, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.CheckoutOrder), args.Bool(1), args.Error(2)
}

func (m *MockOrderRepo) MarkPaid(ctx context.Context, tx *sql.Tx, orderID string) error {
	args := m.Called(ctx, tx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepo) ExpireIfOpen(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Append(ctx context.Context, tx *sql.Tx, payment *models.PaymentRecord) (*models.PaymentRecord, error) {
	args := m.Called(ctx, tx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepo) GetByPaymentID(ctx context.Context, tx *sql.Tx, paymentID string) (*models.PaymentRecord, bool, error) {
	args := m.Called(ctx, tx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.PaymentRecord), args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.PaymentRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PaymentRecord), args.Error(1)
}

type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) LockUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

func (m *MockSubscriptionRepo) GetByUserID(ctx context.Context, tx *sql.Tx, userID int64) (*models.Subscription, bool, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Subscription), args.Bool(1), args.Error(2)
}

func (m *MockSubscriptionRepo) ActiveFor(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Subscription), args.Bool(1), args.Error(2)
}

func (m *MockSubscriptionRepo) UpsertActive(ctx context.Context, tx *sql.Tx, userID int64, planType string, endDate time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, tx, userID, planType, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// memLedger is an in-memory stand-in for the three checkout tables.
type memLedger struct {
	orders   map[string]*models.CheckoutOrder
	payments []*models.PaymentRecord
	subs     map[int64]*models.Subscription
	nextID   int64
}

func newMemLedger() *memLedger {
	return &memLedger{
		orders: map[string]*models.CheckoutOrder{},
		subs:   map[int64]*models.Subscription{},
	}
}

func (l *memLedger) id() int64 {
	l.nextID++
	return l.nextID
}

func (l *memLedger) Create(_ context.Context, order *models.CheckoutOrder) (int64, error) {
	o := *order
	o.ID = l.id()
	l.orders[o.OrderID] = &o
	return o.ID, nil
}

func (l *memLedger) GetByOrderID(_ context.Context, _ *sql.Tx, orderID string) (*models.CheckoutOrder, bool, error) {
	o, ok := l.orders[orderID]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	return &cp, true, nil
}

func (l *memLedger) MarkPaid(_ context.Context, _ *sql.Tx, orderID string) error {
	l.orders[orderID].Status = models.OrderStatusPaid
	return nil
}

func (l *memLedger) ExpireIfOpen(_ context.Context, orderID string) (bool, error) {
	o, ok := l.orders[orderID]
	if !ok || o.Status != models.OrderStatusCreated {
		return false, nil
	}
	o.Status = models.OrderStatusExpired
	return true, nil
}

func (l *memLedger) Append(_ context.Context, _ *sql.Tx, payment *models.PaymentRecord) (*models.PaymentRecord, error) {
	p := *payment
	p.ID = l.id()
	l.payments = append(l.payments, &p)
	return &p, nil
}

func (l *memLedger) GetByPaymentID(_ context.Context, _ *sql.Tx, paymentID string) (*models.PaymentRecord, bool, error) {
	for _, p := range l.payments {
		if p.PaymentID == paymentID {
			return p, true, nil
		}
	}
	return nil, false, nil
}

func (l *memLedger) ListByUserID(_ context.Context, userID int64) ([]*models.PaymentRecord, error) {
	var out []*models.PaymentRecord
	for i := len(l.payments) - 1; i >= 0; i-- {
		if l.payments[i].UserID == userID {
			out = append(out, l.payments[i])
		}
	}
	return out, nil
}

func (l *memLedger) LockUser(context.Context, *sql.Tx, int64) error { return nil }

func (l *memLedger) GetByUserID(_ context.Context, _ *sql.Tx, userID int64) (*models.Subscription, bool, error) {
	s, ok := l.subs[userID]
	if !ok {
		return nil, false, nil
	}
	cp := *s
	return &cp, true, nil
}

func (l *memLedger) ActiveFor(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	s, ok, err := l.GetByUserID(ctx, nil, userID)
	if err != nil || !ok || !s.IsActive {
		return nil, false, err
	}
	return s, true, nil
}

func (l *memLedger) UpsertActive(_ context.Context, _ *sql.Tx, userID int64, planType string, endDate time.Time) (*models.Subscription, error) {
	s, ok := l.subs[userID]
	if !ok {
		s = &models.Subscription{ID: l.id(), UserID: userID, StartDate: time.Now()}
		l.subs[userID] = s
	}
	s.PlanType = planType
	s.EndDate = endDate
	s.IsActive = true
	cp := *s
	return &cp, nil
}

func (l *memLedger) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range l.subs {
		if s.IsActive && !s.EndDate.After(now) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}
