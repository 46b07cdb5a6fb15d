package exchange

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository interface {
	ListRates(ctx context.Context) ([]Rate, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListRates(ctx context.Context) ([]Rate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT base_currency, quote_currency, rate, updated_at
		FROM exchange_rates
	`)
	if err != nil {
		return nil, fmt.Errorf("list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.Base, &rate.Quote, &rate.Value, &rate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange rate: %w", err)
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}
