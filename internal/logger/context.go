package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	gatewayKey   ctxKey = "gateway"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithGateway tags every log line written under ctx with the payment gateway name.
func WithGateway(ctx context.Context, gateway string) context.Context {
	return context.WithValue(ctx, gatewayKey, gateway)
}

func GatewayFrom(ctx context.Context) string {
	v, _ := ctx.Value(gatewayKey).(string)
	return v
}

// FromCtx returns the global logger enriched with request_id and gateway when present.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if gw := GatewayFrom(ctx); gw != "" {
		l = l.With(zap.String("gateway", gw))
	}
	return l
}
