package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maheshrc27/myblog/internal/models"
)

// PaymentRepository is an append-only log of gateway payments.
type PaymentRepository interface {
	Append(ctx context.Context, tx *sql.Tx, payment *models.PaymentRecord) (*models.PaymentRecord, error)
	GetByPaymentID(ctx context.Context, tx *sql.Tx, paymentID string) (*models.PaymentRecord, bool, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.PaymentRecord, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = "id, user_id, payment_id, order_id, amount, currency, status, created_at"

func scanPayment(row interface{ Scan(...any) error }) (*models.PaymentRecord, error) {
	var p models.PaymentRecord
	err := row.Scan(&p.ID, &p.UserID, &p.PaymentID, &p.OrderID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Append(ctx context.Context, tx *sql.Tx, payment *models.PaymentRecord) (*models.PaymentRecord, error) {
	query := `
		INSERT INTO payment_records (user_id, payment_id, order_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	record := *payment
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		record.UserID, record.PaymentID, record.OrderID, record.Amount, record.Currency, record.Status,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("payment %s: %w", record.PaymentID, ErrDuplicate)
		}
		return nil, fmt.Errorf("appending payment %s: %w", record.PaymentID, err)
	}
	return &record, nil
}

func (r *paymentRepository) GetByPaymentID(ctx context.Context, tx *sql.Tx, paymentID string) (*models.PaymentRecord, bool, error) {
	query := "SELECT " + paymentColumns + " FROM payment_records WHERE payment_id = $1"
	p, err := scanPayment(conn(r.db, tx).QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetching payment %s: %w", paymentID, err)
	}
	return p, true, nil
}

func (r *paymentRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.PaymentRecord, error) {
	query := "SELECT " + paymentColumns + " FROM payment_records WHERE user_id = $1 ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing payments for user %d: %w", userID, err)
	}
	defer rows.Close()

	payments := []*models.PaymentRecord{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
