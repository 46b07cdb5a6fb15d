package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sitepay-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// divisionPrecision is the number of decimal places kept when converting
// through an inverse rate.
const divisionPrecision = 8

// RateTable converts amounts with rates cached from the repository. Refresh
// replaces the whole table; Convert loads it on first use.
type RateTable struct {
	repo Repository

	mu       sync.RWMutex
	rates    map[pair]decimal.Decimal
	loadedAt time.Time
}

func NewRateTable(repo Repository) *RateTable {
	return &RateTable{repo: repo}
}

func (t *RateTable) Refresh(ctx context.Context) error {
	list, err := t.repo.ListRates(ctx)
	if err != nil {
		return err
	}

	rates := make(map[pair]decimal.Decimal, len(list))
	for _, r := range list {
		if !r.Value.IsPositive() {
			logger.FromCtx(ctx).Warn("skipping non-positive exchange rate",
				zap.String("base", r.Base),
				zap.String("quote", r.Quote),
			)
			continue
		}
		rates[pair{strings.ToUpper(r.Base), strings.ToUpper(r.Quote)}] = r.Value
	}

	t.mu.Lock()
	t.rates = rates
	t.loadedAt = time.Now()
	t.mu.Unlock()

	logger.FromCtx(ctx).Info("exchange rates refreshed", zap.Int("count", len(rates)))
	return nil
}

// LoadedAt is the time of the last successful refresh, zero before it.
func (t *RateTable) LoadedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loadedAt
}

// Convert converts amount from one currency to another using the direct
// rate or, failing that, the inverse of the opposite one.
func (t *RateTable) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	t.mu.RLock()
	loaded := t.rates != nil
	t.mu.RUnlock()
	if !loaded {
		if err := t.Refresh(ctx); err != nil {
			return decimal.Zero, err
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if rate, ok := t.rates[pair{from, to}]; ok {
		return amount.Mul(rate), nil
	}
	if rate, ok := t.rates[pair{to, from}]; ok {
		return amount.DivRound(rate, divisionPrecision), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s to %s", ErrRateNotFound, from, to)
}
