package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sitepay-be/internal/config"
	"sitepay-be/internal/logger"
	"sitepay-be/internal/order"

	"go.uber.org/zap"
)

const (
	robokassaName      = "robokassa"
	robokassaSignField = "SignatureValue"
	// robokassa settles in rubles only
	robokassaCurrency = "RUB"
	robokassaStatusOK = "Ok"
)

type robokassaGateway struct {
	params config.GatewayParams
	opts   Options
}

// NewRobokassaGateway builds the aggregator gateway. Parameters: query.url,
// query.type, gateway.login, gateway.first.password, gateway.second.password,
// gateway.bill.comment.
func NewRobokassaGateway(params config.GatewayParams, opts Options) Gateway {
	return &robokassaGateway{
		params: params,
		opts:   opts.withDefaults(),
	}
}

func (g *robokassaGateway) Name() string {
	return robokassaName
}

func (g *robokassaGateway) BuildRequest(ctx context.Context, snap *order.Snapshot) (*OutboundRequest, error) {
	login := g.params.Get("gateway.login")
	password := g.params.Get("gateway.first.password")
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: robokassa login or password is not set", ErrConfiguration)
	}

	sum := snap.TotalAmount
	// RUR is mapped before the check so legacy ruble orders skip conversion
	if currency := rubleCurrencies.Translate(snap.Currency); currency != robokassaCurrency {
		if g.opts.Rates == nil {
			return nil, fmt.Errorf("%w: no exchange rate source for %s", ErrCurrencyConversionUnavailable, currency)
		}
		converted, err := g.opts.Rates.Convert(ctx, sum, currency, robokassaCurrency)
		if err != nil {
			return nil, errors.Join(ErrCurrencyConversionUnavailable, err)
		}
		logger.FromCtx(ctx).Debug("order total converted",
			zap.String("from", currency),
			zap.String("amount", sum.String()),
			zap.String("converted", converted.String()),
		)
		sum = converted
	}

	outSum := sum.StringFixed(2)
	invID := padOrderID(snap.ID, 5)
	market := snap.MarketName

	req := &OutboundRequest{
		Gateway:        robokassaName,
		URL:            g.params.Get("query.url"),
		Method:         requestMethod(g.params.Get("query.type")),
		SignatureField: robokassaSignField,
	}
	req.Set("MerchantLogin", login)
	req.Set("OutSum", outSum)
	req.Set("InvId", invID)
	req.Set("InvDesc", formatTemplate(g.params.Get("gateway.bill.comment"),
		map[string]string{"siteName": snap.SiteName}))
	req.Set("Encoding", "utf-8")
	req.Set("Shp_marketName", market)
	req.Set(robokassaSignField, KeyedMD5{}.Sign(strings.Join([]string{
		login, outSum, invID, password, "Shp_marketName=" + market,
	}, ":")))

	return req, nil
}

func (g *robokassaGateway) ParseAndVerify(r *http.Request) (*InboundCallback, error) {
	fields, err := callbackFields(r)
	if err != nil {
		return nil, err
	}

	sign := fields[robokassaSignField]
	if sign == "" {
		return nil, ErrMissingSignature
	}

	password := g.params.Get("gateway.second.password")
	if password == "" {
		return nil, fmt.Errorf("%w: robokassa second password is not set", ErrConfiguration)
	}

	canonical := strings.Join([]string{
		fields["OutSum"], fields["InvId"], password, "Shp_marketName=" + fields["Shp_marketName"],
	}, ":")
	if !(KeyedMD5{}).Verify(canonical, sign) {
		return nil, ErrSignatureMismatch
	}

	return &InboundCallback{
		Gateway:   robokassaName,
		Fields:    fields,
		Signature: sign,
		OrderRef:  fields["InvId"],
	}, nil
}

// ProcessCallback treats every verified notification as a payment: the
// aggregator only calls back for completed ones.
func (g *robokassaGateway) ProcessCallback(cb *InboundCallback) (*PaymentResult, error) {
	orderID, err := parseOrderRef(cb.OrderRef)
	if err != nil {
		return nil, err
	}

	return &PaymentResult{
		Gateway:       robokassaName,
		OrderID:       orderID,
		OperationCode: DeriveOperationCode(robokassaName, cb.OrderRef),
		OperationTime: g.opts.Now().In(g.opts.Location),
		Succeeded:     true,
		Status:        robokassaStatusOK,
		Ack: Acknowledgement{
			ContentType: "text/plain",
			Body:        []byte("OK" + cb.OrderRef + "\n"),
		},
	}, nil
}
