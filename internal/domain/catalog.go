package domain

import "github.com/shopspring/decimal"

// Service is a wash offering; its prices live on size-based variants.
type Service struct {
	ID          int64
	Name        string
	Description string
}

// ServiceVariant is a priced, sized instance of a service
// (e.g. "Basic – Small").
type ServiceVariant struct {
	ID         int64
	ServiceID  int64
	SizeLabel  string
	Price      decimal.Decimal
	EstMinutes int
}
