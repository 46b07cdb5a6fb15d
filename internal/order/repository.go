package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sitepay-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ContactByRole(ctx context.Context, customerID int64, role string) (string, error)
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	query := `
		SELECT o.id, o.customer_id, s.name, m.name, o.currency,
			o.total_amount, o.published_path, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN markets m ON m.id = o.market_id
		JOIN sites s ON s.id = m.site_id
		WHERE o.id = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&o.ID, &o.CustomerID, &o.SiteName, &o.MarketName, &o.Currency,
		&o.TotalAmount, &o.PublishedPath, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	return &o, nil
}

// ContactByRole looks up the attribute carrying the given special role on the
// customer's group, then the customer's value for it. A missing attribute or
// value yields an empty string and no error.
func (r *repository) ContactByRole(ctx context.Context, customerID int64, role string) (string, error) {
	query := `
		SELECT v.value
		FROM customers c
		JOIN group_attributes a
			ON a.group_id = c.group_id AND a.special_role = $2
		JOIN customer_attribute_values v
			ON v.customer_id = c.id AND v.attribute_id = a.id
		WHERE c.id = $1
		LIMIT 1
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, customerID, role).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s contact of customer %d: %w", role, customerID, err)
	}

	return value, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}
