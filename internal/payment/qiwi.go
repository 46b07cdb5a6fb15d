package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sitepay-be/internal/config"
	"sitepay-be/internal/logger"
	"sitepay-be/internal/order"

	"go.uber.org/zap"
)

const (
	qiwiName            = "qiwi"
	qiwiSignatureHeader = "X-Api-Signature"
	qiwiDefaultLifetime = 72 * time.Hour
	qiwiAckXML          = `<?xml version="1.0"?> <result><result_code>0</result_code></result>`
)

var qiwiResponseEncoder = DelimiterJoined{
	Fields: []string{
		"amount", "bill_id", "ccy", "command", "comment",
		"error", "prv_name", "status", "user",
	},
	Delimiter: "|",
}

type qiwiGateway struct {
	params config.GatewayParams
	opts   Options
}

// NewQIWIGateway builds the e-wallet gateway. Parameters: query.url,
// query.type, gateway.key, gateway.shop.id, gateway.application.id,
// gateway.application.password, gateway.bill.url, gateway.bill.comment,
// orders.lifetime (Go duration).
func NewQIWIGateway(params config.GatewayParams, opts Options) Gateway {
	return &qiwiGateway{
		params: params,
		opts:   opts.withDefaults(),
	}
}

func (g *qiwiGateway) Name() string {
	return qiwiName
}

func (g *qiwiGateway) BuildRequest(ctx context.Context, snap *order.Snapshot) (*OutboundRequest, error) {
	shopID := g.params.Get("gateway.shop.id")
	if shopID == "" {
		return nil, fmt.Errorf("%w: qiwi shop id is not set", ErrConfiguration)
	}

	// The redirect is useless without a bill to pay, so a failed bill
	// aborts the checkout.
	if err := g.createBill(ctx, shopID, snap); err != nil {
		return nil, err
	}

	req := &OutboundRequest{
		Gateway: qiwiName,
		URL:     g.params.Get("query.url"),
		Method:  requestMethod(g.params.Get("query.type")),
	}
	req.Set("shop", shopID)
	req.Set("transaction", padOrderID(snap.ID, 5))
	req.Set("successUrl", returnURL(g.opts.PublicBaseURL, snap, returnInfoQuery))
	req.Set("failUrl", returnURL(g.opts.PublicBaseURL, snap, returnErrorQuery))

	return req, nil
}

// createBill issues the bill the customer pays on the wallet side. Every
// call creates a new bill upstream.
func (g *qiwiGateway) createBill(ctx context.Context, shopID string, snap *order.Snapshot) error {
	appID := g.params.Get("gateway.application.id")
	appPassword := g.params.Get("gateway.application.password")
	billURL := g.params.Get("gateway.bill.url")
	if appID == "" || appPassword == "" || billURL == "" {
		return fmt.Errorf("%w: qiwi application credentials or bill url are not set", ErrConfiguration)
	}

	lifetime := qiwiDefaultLifetime
	if raw := g.params.Get("orders.lifetime"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: qiwi orders.lifetime %q: %v", ErrConfiguration, raw, err)
		}
		lifetime = d
	}

	orderID := padOrderID(snap.ID, 5)
	log := logger.FromCtx(ctx).With(zap.String("bill_id", orderID))

	form := url.Values{}
	if snap.Phone != "" {
		form.Set("user", "tel:"+snap.Phone)
	}
	form.Set("amount", snap.TotalAmount.StringFixed(2))
	// bills take the current ISO code, so RUR is mapped here as well as for psbank
	form.Set("ccy", rubleCurrencies.Translate(snap.Currency))
	form.Set("comment", formatTemplate(g.params.Get("gateway.bill.comment"),
		map[string]string{"siteName": snap.SiteName}))
	form.Set("lifetime", g.opts.Now().Add(lifetime).Format("2006-01-02T15:04:05-0700"))

	resp, err := g.opts.HTTPClient.R().
		SetContext(ctx).
		SetBasicAuth(appID, appPassword).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/x-www-form-urlencoded; charset=utf-8").
		SetBody(form.Encode()).
		Put(billURL + shopID + "/bills/" + orderID)
	if err != nil {
		log.Error("qiwi bill request failed", zap.Error(err))
		return fmt.Errorf("%w: qiwi bill: %v", ErrUpstreamCall, err)
	}
	if resp.IsError() {
		log.Error("qiwi bill rejected",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("response", resp.Body()),
		)
		return fmt.Errorf("%w: qiwi bill: http %d", ErrUpstreamCall, resp.StatusCode())
	}

	log.Info("qiwi bill created")
	return nil
}

func (g *qiwiGateway) ParseAndVerify(r *http.Request) (*InboundCallback, error) {
	sign := r.Header.Get(qiwiSignatureHeader)
	if sign == "" {
		return nil, ErrMissingSignature
	}

	signer, err := NewHMACSHA1Base64(g.params.Get("gateway.key"))
	if err != nil {
		return nil, err
	}

	fields, err := callbackFields(r)
	if err != nil {
		return nil, err
	}
	if !signer.Verify(qiwiResponseEncoder.Encode(fields), sign) {
		return nil, ErrSignatureMismatch
	}

	return &InboundCallback{
		Gateway:   qiwiName,
		Fields:    fields,
		Signature: sign,
		OrderRef:  fields["bill_id"],
	}, nil
}

func (g *qiwiGateway) ProcessCallback(cb *InboundCallback) (*PaymentResult, error) {
	orderID, err := parseOrderRef(cb.OrderRef)
	if err != nil {
		return nil, err
	}

	status := cb.Get("status")
	paid := status == "paid"
	code := "1"
	if paid {
		code = "0"
	}

	return &PaymentResult{
		Gateway:       qiwiName,
		OrderID:       orderID,
		OperationCode: DeriveOperationCode(qiwiName, cb.OrderRef),
		OperationTime: g.opts.Now().In(g.opts.Location),
		Succeeded:     paid,
		Status:        code,
		StatusText:    status,
		Ack: Acknowledgement{
			ContentType: "text/xml",
			Body:        []byte(qiwiAckXML),
		},
	}, nil
}
