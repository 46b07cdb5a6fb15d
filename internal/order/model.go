package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending       OrderStatus = "PENDING"
	StatusPaid          OrderStatus = "PAID"
	StatusPaymentFailed OrderStatus = "PAYMENT_FAILED"
	StatusCanceled      OrderStatus = "CANCELED"
)

// Special roles of customer group attributes that carry contact data.
const (
	RoleEmail = "email"
	RolePhone = "phone"
)

// Attribute names written by payment callbacks.
const (
	AttrPaymentOperationCode = "paymentOperationCode"
	AttrPaymentOperationDate = "paymentOperationDate"
)

type Order struct {
	ID            int64
	CustomerID    int64
	SiteName      string
	MarketName    string
	Currency      string
	TotalAmount   decimal.Decimal
	PublishedPath string
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Snapshot is the read-only view of an order a gateway builds its request from.
type Snapshot struct {
	ID            int64
	CustomerID    int64
	TotalAmount   decimal.Decimal
	Currency      string
	SiteName      string
	MarketName    string
	PublishedPath string
	Status        OrderStatus

	// Empty when the customer group has no attribute with that special role
	// or the customer has no value for it.
	Email string
	Phone string
}

func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		SiteName:      o.SiteName,
		MarketName:    o.MarketName,
		PublishedPath: o.PublishedPath,
		Status:        o.Status,
	}
}
