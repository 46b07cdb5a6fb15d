package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sitepay-be/internal/logger"
	"sitepay-be/internal/order"

	"go.uber.org/zap"
)

// operationDateLayout is how the operation date is shown on the order.
const operationDateLayout = "2006-01-02 15:04:05"

type Repository interface {
	SaveCallback(ctx context.Context, rec *CallbackRecord) (callbackID int64, isDuplicate bool, err error)
	MarkCallbackProcessed(ctx context.Context, callbackID int64) error
	MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error

	RecordOperation(ctx context.Context, op *Operation, languages []string) (created bool, err error)
	GetOperationByCode(ctx context.Context, gateway, code string) (*Operation, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// SaveCallback journals a verified callback. A delivery that was already
// processed reports isDuplicate; one that failed earlier is reopened and
// gets its id back so it can be retried.
func (r *repository) SaveCallback(ctx context.Context, rec *CallbackRecord) (int64, bool, error) {
	const q = `
	INSERT INTO payment_callbacks (
		gateway,
		callback_id,
		order_ref,
		operation_code,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (gateway, callback_id)
	DO UPDATE SET process_error = NULL, received_at = now()
	WHERE payment_callbacks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		rec.Gateway,
		rec.CallbackID,
		rec.OrderRef,
		rec.OperationCode,
		string(rec.Payload), // jsonb: pq sends []byte as bytea
	).Scan(&id)

	if err != nil {
		// processed already: idempotent success
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("save %s callback: %w", rec.Gateway, err)
	}

	return id, false, nil
}

func (r *repository) MarkCallbackProcessed(ctx context.Context, callbackID int64) error {
	const q = `
	UPDATE payment_callbacks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID)
	return err
}

func (r *repository) MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error {
	const q = `
	UPDATE payment_callbacks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID, reason)
	return err
}

// RecordOperation writes the operation code and date onto the order in every
// language and upserts the payment operation by gateway and code, all in one
// transaction. created is false when the code was already known. An existing
// operation stays with the order it was first recorded for.
func (r *repository) RecordOperation(ctx context.Context, op *Operation, languages []string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin operation tx: %w", err)
	}
	defer tx.Rollback()

	const attrQ = `
	INSERT INTO order_attributes (order_id, language, name, value)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (order_id, language, name)
	DO UPDATE SET value = EXCLUDED.value;
	`

	date := op.ModifiedAt.Format(operationDateLayout)
	for _, lang := range languages {
		if _, err := tx.ExecContext(ctx, attrQ, op.OrderID, lang, order.AttrPaymentOperationCode, op.Code); err != nil {
			return false, fmt.Errorf("set operation code on order %d: %w", op.OrderID, err)
		}
		if _, err := tx.ExecContext(ctx, attrQ, op.OrderID, lang, order.AttrPaymentOperationDate, date); err != nil {
			return false, fmt.Errorf("set operation date on order %d: %w", op.OrderID, err)
		}
	}

	const opQ = `
	INSERT INTO payment_operations (
		gateway,
		code,
		order_id,
		status,
		description,
		created_at,
		modified_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (gateway, code)
	DO UPDATE SET
		status = EXCLUDED.status,
		description = EXCLUDED.description,
		modified_at = EXCLUDED.modified_at
	RETURNING id, order_id, (xmax = 0) AS created;
	`

	var (
		created      bool
		knownOrderID int64
	)
	err = tx.QueryRowContext(ctx, opQ,
		op.Gateway, op.Code, op.OrderID, op.Status, op.Description, op.CreatedAt, op.ModifiedAt,
	).Scan(&op.ID, &knownOrderID, &created)
	if err != nil {
		return false, fmt.Errorf("upsert payment operation %s: %w", op.Code, err)
	}
	if knownOrderID != op.OrderID {
		logger.FromCtx(ctx).Warn("payment operation code reused for another order",
			zap.String("gateway", op.Gateway),
			zap.String("operation_code", op.Code),
			zap.Int64("operation_order_id", knownOrderID),
			zap.Int64("order_id", op.OrderID),
		)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit operation tx: %w", err)
	}
	return created, nil
}

func (r *repository) GetOperationByCode(ctx context.Context, gateway, code string) (*Operation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, gateway, code, order_id, status, description, created_at, modified_at
		FROM payment_operations WHERE gateway = $1 AND code = $2
	`, gateway, code)

	var op Operation
	err := row.Scan(
		&op.ID, &op.Gateway, &op.Code, &op.OrderID,
		&op.Status, &op.Description, &op.CreatedAt, &op.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment operation %s: %w", code, err)
	}
	return &op, nil
}
