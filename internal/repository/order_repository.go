package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maheshrc27/myblog/internal/models"
)

type CheckoutOrderRepository interface {
	Create(ctx context.Context, order *models.CheckoutOrder) (int64, error)
	GetByOrderID(ctx context.Context, tx *sql.Tx, orderID string) (*models.CheckoutOrder, bool, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, orderID string) error
	ExpireIfOpen(ctx context.Context, orderID string) (bool, error)
}

type checkoutOrderRepository struct {
	db *sql.DB
}

func NewCheckoutOrderRepository(db *sql.DB) CheckoutOrderRepository {
	return &checkoutOrderRepository{db: db}
}

func (r *checkoutOrderRepository) Create(ctx context.Context, order *models.CheckoutOrder) (int64, error) {
	query := `
		INSERT INTO checkout_orders (order_id, user_id, plan_type, amount, currency, receipt, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	status := order.Status
	if status == "" {
		status = models.OrderStatusCreated
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		order.OrderID, order.UserID, order.PlanType, order.Amount, order.Currency, order.Receipt, status,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("order %s: %w", order.OrderID, ErrDuplicate)
		}
		return 0, fmt.Errorf("creating order %s: %w", order.OrderID, err)
	}
	return id, nil
}

// GetByOrderID locks the row for the rest of tx when one is given.
func (r *checkoutOrderRepository) GetByOrderID(ctx context.Context, tx *sql.Tx, orderID string) (*models.CheckoutOrder, bool, error) {
	query := `SELECT id, order_id, user_id, plan_type, amount, currency, receipt, status, created_at, updated_at
		FROM checkout_orders WHERE order_id = $1`
	if tx != nil {
		query += " FOR UPDATE"
	}

	var o models.CheckoutOrder
	err := conn(r.db, tx).QueryRowContext(ctx, query, orderID).Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.PlanType, &o.Amount, &o.Currency, &o.Receipt, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetching order %s: %w", orderID, err)
	}
	return &o, true, nil
}

func (r *checkoutOrderRepository) MarkPaid(ctx context.Context, tx *sql.Tx, orderID string) error {
	query := `
		UPDATE checkout_orders
		SET status = $1,
			updated_at = NOW()
		WHERE order_id = $2
	`
	if _, err := conn(r.db, tx).ExecContext(ctx, query, models.OrderStatusPaid, orderID); err != nil {
		return fmt.Errorf("marking order %s paid: %w", orderID, err)
	}
	return nil
}

// ExpireIfOpen moves an order that is still awaiting payment to expired.
func (r *checkoutOrderRepository) ExpireIfOpen(ctx context.Context, orderID string) (bool, error) {
	query := `
		UPDATE checkout_orders
		SET status = $1,
			updated_at = NOW()
		WHERE order_id = $2 AND status = $3
	`
	res, err := r.db.ExecContext(ctx, query, models.OrderStatusExpired, orderID, models.OrderStatusCreated)
	if err != nil {
		return false, fmt.Errorf("expiring order %s: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
