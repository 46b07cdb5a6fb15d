package payment

import (
	"context"
	"net/http"

	"sitepay-be/internal/order"
)

// Gateway is one payment provider's protocol.
type Gateway interface {
	Name() string

	// BuildRequest produces the signed parameters that send the customer to
	// the gateway. It may perform side effects upstream (bill creation).
	BuildRequest(ctx context.Context, snap *order.Snapshot) (*OutboundRequest, error)

	// ParseAndVerify extracts callback fields and checks their signature.
	// Any error means the callback must be rejected untouched.
	ParseAndVerify(r *http.Request) (*InboundCallback, error)

	// ProcessCallback turns a verified callback into a PaymentResult.
	ProcessCallback(cb *InboundCallback) (*PaymentResult, error)
}
