package payment

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Options are the collaborators shared by all gateways.
type Options struct {
	// PublicBaseURL prefixes order pages in return URLs.
	PublicBaseURL string
	// Location is where gateway GMT timestamps are converted to.
	Location *time.Location
	// Rates may be nil; gateways with a settlement currency then refuse
	// orders in other currencies.
	Rates      Converter
	HTTPClient *resty.Client
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.HTTPClient == nil {
		// bill creation is not idempotent upstream, so no retries
		o.HTTPClient = resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(0)
	}
	return o
}
