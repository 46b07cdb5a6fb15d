package payment

import "errors"

var (
	ErrUnknownGateway                = errors.New("unknown payment gateway")
	ErrConfiguration                 = errors.New("payment gateway is not configured")
	ErrMissingSignature              = errors.New("callback signature is missing")
	ErrSignatureMismatch             = errors.New("callback signature mismatch")
	ErrUpstreamCall                  = errors.New("upstream gateway call failed")
	ErrCurrencyConversionUnavailable = errors.New("currency conversion unavailable")
	ErrOperationNotFound             = errors.New("payment operation not found")
)

// IsRejection reports whether err stops a callback before any state is touched.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingSignature) || errors.Is(err, ErrSignatureMismatch)
}
