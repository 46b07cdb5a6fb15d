package exchange

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrRateNotFound = errors.New("exchange rate not found")

// Rate says one unit of Base costs Value units of Quote.
type Rate struct {
	Base      string
	Quote     string
	Value     decimal.Decimal
	UpdatedAt time.Time
}

type pair struct {
	base, quote string
}
