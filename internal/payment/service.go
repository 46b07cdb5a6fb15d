package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sitepay-be/internal/logger"
	"sitepay-be/internal/metrics"
	"sitepay-be/internal/order"

	"go.uber.org/zap"
)

// Orders is the part of the order subsystem payments depend on.
type Orders interface {
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
	GetSnapshotForCustomer(ctx context.Context, orderID, customerID int64) (*order.Snapshot, error)
	OnPaymentSuccess(ctx context.Context, orderID int64) error
	OnPaymentError(ctx context.Context, orderID int64) error
}

type Service interface {
	// Checkout builds the request that sends the customer to the gateway.
	Checkout(ctx context.Context, gateway string, orderID, customerID int64) (*OutboundRequest, error)
	// HandleCallback verifies and applies a gateway callback and returns the
	// reply the gateway expects.
	HandleCallback(ctx context.Context, gateway string, r *http.Request) (*Acknowledgement, error)
}

type service struct {
	gateways  *Registry
	repo      Repository
	orders    Orders
	dedup     Deduper
	languages []string
}

func NewService(gateways *Registry, repo Repository, orders Orders, dedup Deduper, languages []string) Service {
	if dedup == nil {
		dedup = NewMemoryDeduper(24 * time.Hour)
	}
	return &service{
		gateways:  gateways,
		repo:      repo,
		orders:    orders,
		dedup:     dedup,
		languages: languages,
	}
}

func (s *service) Checkout(ctx context.Context, gateway string, orderID, customerID int64) (*OutboundRequest, error) {
	gw, err := s.gateways.Get(gateway)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithGateway(ctx, gateway)

	snap, err := s.orders.GetSnapshotForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	req, err := gw.BuildRequest(ctx, snap)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to build gateway request",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}
	return req, nil
}

func (s *service) HandleCallback(ctx context.Context, gateway string, r *http.Request) (*Acknowledgement, error) {
	gw, err := s.gateways.Get(gateway)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithGateway(ctx, gateway)
	log := logger.FromCtx(ctx)
	timer := metrics.StartTimer()

	cb, err := gw.ParseAndVerify(r)
	if err != nil {
		// field values stay out of the log
		log.Warn("callback rejected", zap.Error(err))
		metrics.Callbacks.Observe(gateway, metrics.OutcomeRejected)
		return nil, err
	}

	res, err := gw.ProcessCallback(cb)
	if err != nil {
		log.Warn("callback could not be processed", zap.Error(err))
		metrics.Callbacks.Observe(gateway, metrics.OutcomeFailed)
		return nil, err
	}
	log = log.With(
		zap.Int64("order_id", res.OrderID),
		zap.String("operation_code", res.OperationCode),
	)

	payload, err := json.Marshal(cb.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode callback payload: %w", err)
	}

	callbackID, isDuplicate, err := s.repo.SaveCallback(ctx, &CallbackRecord{
		Gateway:       gateway,
		CallbackID:    cb.Signature,
		OrderRef:      cb.OrderRef,
		OperationCode: res.OperationCode,
		Payload:       payload,
	})
	if err != nil {
		log.Error("failed to journal callback", zap.Error(err))
		metrics.Callbacks.Observe(gateway, metrics.OutcomeFailed)
		return nil, err
	}
	if isDuplicate {
		log.Info("callback already processed")
		metrics.Callbacks.Observe(gateway, metrics.OutcomeDuplicate)
		return &res.Ack, nil
	}

	if err := s.apply(ctx, res); err != nil {
		if markErr := s.repo.MarkCallbackFailed(ctx, callbackID, err.Error()); markErr != nil {
			log.Error("failed to mark callback failed", zap.Error(markErr))
		}
		log.Error("callback processing failed", zap.Error(err))
		metrics.Callbacks.Observe(gateway, metrics.OutcomeFailed)
		return nil, err
	}

	if err := s.repo.MarkCallbackProcessed(ctx, callbackID); err != nil {
		// the operation is recorded; a redelivery replays idempotently
		log.Error("failed to mark callback processed", zap.Error(err))
	}

	metrics.Callbacks.Observe(gateway, metrics.OutcomeProcessed)
	log.Info("callback processed",
		zap.Bool("succeeded", res.Succeeded),
		zap.String("status", res.Status),
		zap.Duration("duration", timer.Duration()),
	)
	return &res.Ack, nil
}

// apply records the operation and notifies the order subsystem once per
// operation and outcome.
func (s *service) apply(ctx context.Context, res *PaymentResult) error {
	log := logger.FromCtx(ctx)

	if _, err := s.orders.GetOrder(ctx, res.OrderID); err != nil {
		return err
	}

	op := &Operation{
		Gateway:     res.Gateway,
		Code:        res.OperationCode,
		OrderID:     res.OrderID,
		Status:      res.Status,
		Description: res.StatusText,
		CreatedAt:   res.OperationTime,
		ModifiedAt:  res.OperationTime,
	}
	created, err := s.repo.RecordOperation(ctx, op, s.languages)
	if err != nil {
		return err
	}
	if !created {
		log.Info("payment operation updated", zap.Int64("operation_id", op.ID))
	}

	outcome, notify := "error", s.orders.OnPaymentError
	if res.Succeeded {
		outcome, notify = "success", s.orders.OnPaymentSuccess
	}

	key := res.Gateway + ":" + res.OperationCode + ":" + outcome
	seen, err := s.dedup.Seen(ctx, key)
	if err != nil {
		log.Warn("notification dedup unavailable", zap.Error(err))
		seen = false
	}
	if seen {
		log.Info("order already notified", zap.String("outcome", outcome))
		return nil
	}

	if err := notify(ctx, res.OrderID); err != nil {
		if ferr := s.dedup.Forget(ctx, key); ferr != nil {
			log.Warn("failed to release notification key", zap.Error(ferr))
		}
		return fmt.Errorf("notify order %d of payment %s: %w", res.OrderID, outcome, err)
	}
	return nil
}
