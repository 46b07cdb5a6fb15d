package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"sitepay-be/internal/config"
	"sitepay-be/internal/logger"
	"sitepay-be/internal/order"

	"go.uber.org/zap"
)

const (
	psbankName       = "psbank"
	psbankTimeLayout = "20060102150405"
	psbankSignField  = "P_SIGN"
)

var psbankRequestFields = []string{
	"AMOUNT", "CURRENCY", "ORDER", "MERCH_NAME", "MERCHANT", "TERMINAL",
	"EMAIL", "TRTYPE", "TIMESTAMP", "NONCE", "BACKREF",
}

var (
	psbankRequestEncoder  = LengthPrefixed{Fields: psbankRequestFields, Placeholder: "-"}
	psbankResponseEncoder = LengthPrefixed{
		Fields: append(append([]string{}, psbankRequestFields...),
			"RESULT", "RC", "RCTEXT", "AUTHCODE", "RRN", "INT_REF"),
		Placeholder: "-",
	}
)

type psbankGateway struct {
	params config.GatewayParams
	opts   Options
	nonce  func() string
}

// NewPSBankGateway builds the bank acquiring gateway. Parameters:
// query.url, query.type, gateway.key (hex), gateway.terminal,
// gateway.merchant, gateway.description.
func NewPSBankGateway(params config.GatewayParams, opts Options) Gateway {
	return &psbankGateway{
		params: params,
		opts:   opts.withDefaults(),
		nonce:  psbankNonce,
	}
}

func (g *psbankGateway) Name() string {
	return psbankName
}

// psbankNonce is replay salt for the bank, not a secret.
func psbankNonce() string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, "%X", 0x1000+rand.IntN(0x9999-0x1000+1))
	}
	return b.String()
}

func (g *psbankGateway) signer() (*HMACSHA1Hex, error) {
	return NewHMACSHA1Hex(g.params.Get("gateway.key"))
}

func (g *psbankGateway) BuildRequest(ctx context.Context, snap *order.Snapshot) (*OutboundRequest, error) {
	signer, err := g.signer()
	if err != nil {
		return nil, err
	}

	terminal := g.params.Get("gateway.terminal")
	merchant := g.params.Get("gateway.merchant")
	if terminal == "" || merchant == "" {
		return nil, fmt.Errorf("%w: psbank terminal or merchant is not set", ErrConfiguration)
	}

	description := g.params.Get("gateway.description")
	if description == "" {
		description = "Заказ на сайте {siteName}"
	}

	req := &OutboundRequest{
		Gateway:        psbankName,
		URL:            g.params.Get("query.url"),
		Method:         requestMethod(g.params.Get("query.type")),
		SignatureField: psbankSignField,
	}
	req.Set("AMOUNT", snap.TotalAmount.StringFixed(2))
	req.Set("CURRENCY", rubleCurrencies.Translate(snap.Currency))
	req.Set("ORDER", padOrderID(snap.ID, 6))
	req.Set("DESC", formatTemplate(description, map[string]string{"siteName": snap.SiteName}))
	req.Set("TERMINAL", terminal)
	req.Set("TRTYPE", "1")
	req.Set("MERCH_NAME", snap.SiteName)
	req.Set("MERCHANT", merchant)
	if snap.Email != "" {
		req.Set("EMAIL", snap.Email)
	}
	req.Set("TIMESTAMP", g.opts.Now().UTC().Format(psbankTimeLayout))
	req.Set("NONCE", g.nonce())
	req.Set("BACKREF", returnURL(g.opts.PublicBaseURL, snap, returnInfoQuery))

	values := make(map[string]string, len(req.Fields))
	for _, f := range req.Fields {
		values[f.Name] = f.Value
	}
	req.Set(psbankSignField, signer.Sign(psbankRequestEncoder.Encode(values)))

	logger.FromCtx(ctx).Debug("psbank request built", zap.Int64("order_id", snap.ID))
	return req, nil
}

func (g *psbankGateway) ParseAndVerify(r *http.Request) (*InboundCallback, error) {
	fields, err := callbackFields(r)
	if err != nil {
		return nil, err
	}

	sign := fields[psbankSignField]
	if sign == "" {
		return nil, ErrMissingSignature
	}

	signer, err := g.signer()
	if err != nil {
		return nil, err
	}
	if !signer.Verify(psbankResponseEncoder.Encode(fields), sign) {
		return nil, ErrSignatureMismatch
	}

	return &InboundCallback{
		Gateway:   psbankName,
		Fields:    fields,
		Signature: sign,
		OrderRef:  fields["ORDER"],
	}, nil
}

func (g *psbankGateway) ProcessCallback(cb *InboundCallback) (*PaymentResult, error) {
	orderID, err := parseOrderRef(cb.OrderRef)
	if err != nil {
		return nil, err
	}

	code := cb.Get("AUTHCODE")
	if code == "" {
		code = DeriveOperationCode(psbankName, cb.OrderRef)
	}

	result := cb.Get("RESULT")
	return &PaymentResult{
		Gateway:       psbankName,
		OrderID:       orderID,
		OperationCode: code,
		OperationTime: g.operationTime(cb.Get("TIMESTAMP")),
		Succeeded:     result == "0",
		Status:        result,
		StatusText:    cb.Get("RCTEXT"),
		Ack:           Acknowledgement{},
	}, nil
}

// operationTime converts the bank's GMT timestamp to the local zone.
func (g *psbankGateway) operationTime(ts string) time.Time {
	t, err := time.ParseInLocation(psbankTimeLayout, ts, time.UTC)
	if err != nil {
		return g.opts.Now().In(g.opts.Location)
	}
	return t.In(g.opts.Location)
}
