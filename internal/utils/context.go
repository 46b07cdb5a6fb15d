package utils

import "context"

type contextKey string

const (
	CustomerIDKey    contextKey = "customer_id"
	CustomerEmailKey contextKey = "email"
)

// SetCustomerContext sets the authenticated customer (called by middleware)
func SetCustomerContext(ctx context.Context, id int64, email string) context.Context {
	ctx = context.WithValue(ctx, CustomerIDKey, id)
	ctx = context.WithValue(ctx, CustomerEmailKey, email)
	return ctx
}

// GetCustomerIDFromContext retrieves customerID safely
func GetCustomerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CustomerIDKey).(int64)
	return id, ok
}

func GetCustomerEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(CustomerEmailKey).(string)
	return email
}
