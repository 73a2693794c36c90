package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment settles a completed order. One payment per order.
type Payment struct {
	ID      int64
	OrderID int64
	Amount  decimal.Decimal
	Method  string
	PaidAt  time.Time
}
