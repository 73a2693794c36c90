package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeWalkIn      OrderType = "walk_in"
	OrderTypeReservation OrderType = "reservation"
)

type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ServiceOrder is a customer's wash job: a bay, a crew member and one or
// more priced service variants.
type ServiceOrder struct {
	ID         int64
	CustomerID int64
	EmployeeID *int64
	BayID      *int64
	Type       OrderType
	Status     OrderStatus
	// IdempotencyKey is empty for orders created without one.
	IdempotencyKey string
	Lines          []OrderLine
	CreatedAt      time.Time
}

// OrderLine is one service variant on an order. Price and SizeLabel are
// resolved from the referenced variant.
type OrderLine struct {
	ID        int64
	VariantID int64
	Quantity  int
	Price     decimal.Decimal
	SizeLabel string
}

// Total sums quantity * price across all lines.
func (o ServiceOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
