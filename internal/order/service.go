package order

import (
	"context"
	"errors"
	"fmt"

	"sitepay-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	GetSnapshot(ctx context.Context, orderID int64) (*Snapshot, error)
	GetSnapshotForCustomer(ctx context.Context, orderID, customerID int64) (*Snapshot, error)
	OnPaymentSuccess(ctx context.Context, orderID int64) error
	OnPaymentError(ctx context.Context, orderID int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) GetSnapshot(ctx context.Context, orderID int64) (*Snapshot, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	snap := o.Snapshot()

	snap.Email, err = s.repo.ContactByRole(ctx, o.CustomerID, RoleEmail)
	if err != nil {
		return nil, err
	}
	snap.Phone, err = s.repo.ContactByRole(ctx, o.CustomerID, RolePhone)
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

func (s *service) GetSnapshotForCustomer(ctx context.Context, orderID, customerID int64) (*Snapshot, error) {
	snap, err := s.GetSnapshot(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if snap.CustomerID != customerID {
		return nil, ErrUnauthorized
	}
	if snap.Status != StatusPending && snap.Status != StatusPaymentFailed {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, snap.Status, ErrNotPayable)
	}
	return snap, nil
}

func (s *service) OnPaymentSuccess(ctx context.Context, orderID int64) error {
	log := logger.FromCtx(ctx).With(zap.Int64("order_id", orderID))

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == StatusPaid {
		log.Info("order already paid")
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, orderID, StatusPaid); err != nil {
		return err
	}

	log.Info("order marked as paid", zap.String("previous_status", string(o.Status)))
	return nil
}

func (s *service) OnPaymentError(ctx context.Context, orderID int64) error {
	log := logger.FromCtx(ctx).With(zap.Int64("order_id", orderID))

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	switch o.Status {
	case StatusPaid:
		// a late failure report never reverts a confirmed payment
		log.Warn("ignoring payment error for paid order")
		return nil
	case StatusPaymentFailed:
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, orderID, StatusPaymentFailed); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("mark order %d failed: %w", orderID, err)
	}

	log.Info("order payment failed")
	return nil
}
