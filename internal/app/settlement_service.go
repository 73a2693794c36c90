package app

import (
	"context"

	"github.com/jgdelacruz/washbay/internal/clock"
	"github.com/jgdelacruz/washbay/internal/domain"
	"github.com/shopspring/decimal"
)

// SettlementRepository is the storage surface for closing out an order.
type SettlementRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID int64) (domain.ServiceOrder, error)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	ReleaseBay(ctx context.Context, bayID int64) error
	ReleaseEmployee(ctx context.Context, employeeID int64) error
	InsertPayment(ctx context.Context, payment domain.Payment) (int64, error)
}

// Settlement completes or cancels in-progress orders, releasing the bay
// and the crew member in the same transaction.
type Settlement struct {
	repo   SettlementRepository
	clock  clock.Clock
	cache  IdempotencyCache
	events OrderEvents
}

func NewSettlement(repo SettlementRepository, clk clock.Clock, opts ...SettlementOption) *Settlement {
	s := &Settlement{
		repo:  repo,
		clock: clk,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SettlementOption func(*Settlement)

func WithSettlementCache(c IdempotencyCache) SettlementOption {
	return func(s *Settlement) {
		s.cache = c
	}
}

func WithSettlementEvents(e OrderEvents) SettlementOption {
	return func(s *Settlement) {
		s.events = e
	}
}

type PaymentInput struct {
	Amount decimal.Decimal
	Method string
}

// CompleteOrder marks an in-progress order completed, frees its bay and
// employee, and records the payment. The amount must match the order total.
func (s *Settlement) CompleteOrder(ctx context.Context, orderID int64, in PaymentInput) (domain.ServiceOrder, domain.Payment, error) {
	if in.Method == "" {
		in.Method = "cash"
	}

	now := s.clock.Now()
	var (
		order   domain.ServiceOrder
		payment domain.Payment
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusInProgress {
			return domain.ErrOrderNotInProgress
		}

		total := order.Total()
		if !in.Amount.Equal(total) {
			return domain.ErrPaymentMismatch
		}

		if err := s.repo.SetOrderStatus(txCtx, orderID, domain.OrderStatusCompleted); err != nil {
			return err
		}
		if err := s.releaseResources(txCtx, order); err != nil {
			return err
		}

		payment = domain.Payment{
			OrderID: orderID,
			Amount:  total,
			Method:  in.Method,
			PaidAt:  now,
		}
		payment.ID, err = s.repo.InsertPayment(txCtx, payment)
		if err != nil {
			return err
		}

		order.Status = domain.OrderStatusCompleted
		return nil
	})
	if err != nil {
		return domain.ServiceOrder{}, domain.Payment{}, err
	}

	s.afterSettle(ctx, order)
	return order, payment, nil
}

// CancelOrder releases the order's resources without recording a payment.
func (s *Settlement) CancelOrder(ctx context.Context, orderID int64) (domain.ServiceOrder, error) {
	var order domain.ServiceOrder

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusInProgress {
			return domain.ErrOrderNotInProgress
		}

		if err := s.repo.SetOrderStatus(txCtx, orderID, domain.OrderStatusCancelled); err != nil {
			return err
		}
		if err := s.releaseResources(txCtx, order); err != nil {
			return err
		}

		order.Status = domain.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	s.afterSettle(ctx, order)
	return order, nil
}

func (s *Settlement) releaseResources(ctx context.Context, order domain.ServiceOrder) error {
	if order.BayID != nil {
		if err := s.repo.ReleaseBay(ctx, *order.BayID); err != nil {
			return err
		}
	}
	if order.EmployeeID != nil {
		if err := s.repo.ReleaseEmployee(ctx, *order.EmployeeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Settlement) afterSettle(ctx context.Context, order domain.ServiceOrder) {
	if s.cache != nil {
		s.cache.SetOrderStatus(ctx, order.ID, order.Status)
	}
	if s.events != nil {
		s.events.OrderSettled(ctx, order)
	}
}
