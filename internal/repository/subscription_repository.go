package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/myblog/internal/models"
)

type SubscriptionRepository interface {
	LockUser(ctx context.Context, tx *sql.Tx, userID int64) error
	GetByUserID(ctx context.Context, tx *sql.Tx, userID int64) (*models.Subscription, bool, error)
	ActiveFor(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	UpsertActive(ctx context.Context, tx *sql.Tx, userID int64, planType string, endDate time.Time) (*models.Subscription, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = "id, user_id, plan_type, start_date, end_date, is_active, created_at, updated_at"

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.PlanType, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LockUser takes a transaction-scoped advisory lock keyed on the user, serialising
// concurrent confirmations for the same account until tx ends.
func (r *subscriptionRepository) LockUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	if tx == nil {
		return errors.New("user lock requires a transaction")
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", userID); err != nil {
		return fmt.Errorf("locking user %d: %w", userID, err)
	}
	return nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, tx *sql.Tx, userID int64) (*models.Subscription, bool, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE user_id = $1"
	s, err := scanSubscription(conn(r.db, tx).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetching subscription for user %d: %w", userID, err)
	}
	return s, true, nil
}

func (r *subscriptionRepository) ActiveFor(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE user_id = $1 AND is_active = TRUE AND end_date > NOW()"
	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetching active subscription for user %d: %w", userID, err)
	}
	return s, true, nil
}

// UpsertActive creates the user's subscription or overwrites plan, end date and
// active flag of the existing one. start_date is only set on creation.
func (r *subscriptionRepository) UpsertActive(ctx context.Context, tx *sql.Tx, userID int64, planType string, endDate time.Time) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, plan_type, start_date, end_date, is_active)
		VALUES ($1, $2, NOW(), $3, TRUE)
		ON CONFLICT (user_id) DO UPDATE
		SET plan_type = EXCLUDED.plan_type,
			end_date = EXCLUDED.end_date,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING ` + subscriptionColumns

	s, err := scanSubscription(conn(r.db, tx).QueryRowContext(ctx, query, userID, planType, endDate))
	if err != nil {
		return nil, fmt.Errorf("upserting subscription for user %d: %w", userID, err)
	}
	return s, nil
}

func (r *subscriptionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET is_active = FALSE,
			updated_at = NOW()
		WHERE is_active = TRUE AND end_date <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivating expired subscriptions: %w", err)
	}
	return res.RowsAffected()
}
