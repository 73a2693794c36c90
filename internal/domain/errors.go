package domain

import "errors"

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrBayNotFound         = errors.New("bay not found")
	ErrVariantNotFound     = errors.New("service variant not found")
	ErrOrderNotFound       = errors.New("service order not found")
	ErrSupplyNotFound      = errors.New("supply not found")
	ErrBayUnavailable      = errors.New("bay is not available")
	ErrEmployeeUnavailable = errors.New("employee is not available")
	ErrNoVariants          = errors.New("at least one service variant is required")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrDuplicateKey        = errors.New("idempotency key already used")
	ErrOrderNotInProgress  = errors.New("order is not in progress")
	ErrPaymentMismatch     = errors.New("payment amount does not match order total")
	ErrOrderAlreadyPaid    = errors.New("order already paid")
	ErrInsufficientStock   = errors.New("insufficient stock")
)
