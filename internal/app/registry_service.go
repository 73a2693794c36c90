package app

import (
	"context"
	"errors"

	"github.com/jgdelacruz/washbay/internal/clock"
	"github.com/jgdelacruz/washbay/internal/domain"
	"github.com/samber/lo"
)

// RegistryRepository is the storage surface needed to register an order.
type RegistryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindOrderByIdempotencyKey(ctx context.Context, key string) (*domain.ServiceOrder, error)
	CustomerExists(ctx context.Context, customerID int64) (bool, error)
	GetBay(ctx context.Context, bayID int64) (domain.Bay, error)
	GetEmployee(ctx context.Context, employeeID int64) (domain.Employee, error)
	GetVariants(ctx context.Context, variantIDs []int64) ([]domain.ServiceVariant, error)
	InsertOrder(ctx context.Context, order domain.ServiceOrder) (int64, error)
	ReserveBay(ctx context.Context, bayID int64) error
	AssignEmployee(ctx context.Context, employeeID int64) error
	InsertIdempotencyRecord(ctx context.Context, key string, orderID int64) error
	GetOrder(ctx context.Context, orderID int64) (domain.ServiceOrder, error)
}

// IdempotencyCache is an optional fast path in front of the ledger table.
// It is advisory only: a miss or a stale entry falls through to Postgres.
type IdempotencyCache interface {
	GetOrderID(ctx context.Context, key string) (int64, bool)
	SetOrderID(ctx context.Context, key string, orderID int64)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus)
}

// OrderEvents publishes lifecycle events after commit, best effort.
type OrderEvents interface {
	OrderCreated(ctx context.Context, order domain.ServiceOrder)
	OrderSettled(ctx context.Context, order domain.ServiceOrder)
}

// Registry turns a booking request into a durable order while reserving a
// bay and assigning a crew member, at most once per idempotency key.
type Registry struct {
	repo   RegistryRepository
	clock  clock.Clock
	cache  IdempotencyCache
	events OrderEvents
}

func NewRegistry(repo RegistryRepository, clk clock.Clock, opts ...RegistryOption) *Registry {
	r := &Registry{
		repo:  repo,
		clock: clk,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type RegistryOption func(*Registry)

// WithIdempotencyCache adds a read-through cache for replayed keys.
func WithIdempotencyCache(c IdempotencyCache) RegistryOption {
	return func(r *Registry) {
		r.cache = c
	}
}

// WithOrderEvents adds a post-commit event publisher.
func WithOrderEvents(e OrderEvents) RegistryOption {
	return func(r *Registry) {
		r.events = e
	}
}

type CreateOrderInput struct {
	CustomerID int64
	BayID      int64
	EmployeeID int64
	VariantIDs []int64
	// Quantities is optional; when nil every line defaults to 1. When set
	// it must be parallel to VariantIDs.
	Quantities     []int
	Type           domain.OrderType
	IdempotencyKey string
}

type CreateOrderResult struct {
	Order   domain.ServiceOrder
	Created bool
}

func (s *Registry) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if len(in.VariantIDs) == 0 {
		return CreateOrderResult{}, domain.ErrNoVariants
	}
	if in.Quantities != nil && len(in.Quantities) != len(in.VariantIDs) {
		return CreateOrderResult{}, domain.ErrInvalidQuantity
	}
	for _, qty := range in.Quantities {
		if qty < 1 {
			return CreateOrderResult{}, domain.ErrInvalidQuantity
		}
	}
	orderType := in.Type
	if orderType == "" {
		orderType = domain.OrderTypeWalkIn
	}

	if in.IdempotencyKey != "" && s.cache != nil {
		if orderID, ok := s.cache.GetOrderID(ctx, in.IdempotencyKey); ok {
			if order, err := s.repo.GetOrder(ctx, orderID); err == nil {
				return CreateOrderResult{Order: order}, nil
			}
		}
	}

	now := s.clock.Now()
	var result CreateOrderResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if in.IdempotencyKey != "" {
			existing, err := s.repo.FindOrderByIdempotencyKey(txCtx, in.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				result = CreateOrderResult{Order: *existing}
				return nil
			}
		}

		bay, err := s.repo.GetBay(txCtx, in.BayID)
		if err != nil {
			return err
		}
		if bay.Status != domain.BayStatusAvailable {
			return domain.ErrBayUnavailable
		}

		employee, err := s.repo.GetEmployee(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}
		if !employee.Eligible() {
			return domain.ErrEmployeeUnavailable
		}

		exists, err := s.repo.CustomerExists(txCtx, in.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrCustomerNotFound
		}

		variants, err := s.repo.GetVariants(txCtx, in.VariantIDs)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(variants, func(v domain.ServiceVariant) int64 { return v.ID })

		lines := make([]domain.OrderLine, 0, len(in.VariantIDs))
		for i, variantID := range in.VariantIDs {
			variant, ok := byID[variantID]
			if !ok {
				return domain.ErrVariantNotFound
			}
			qty := 1
			if in.Quantities != nil {
				qty = in.Quantities[i]
			}
			lines = append(lines, domain.OrderLine{
				VariantID: variantID,
				Quantity:  qty,
				Price:     variant.Price,
				SizeLabel: variant.SizeLabel,
			})
		}

		order := domain.ServiceOrder{
			CustomerID:     in.CustomerID,
			EmployeeID:     &in.EmployeeID,
			BayID:          &in.BayID,
			Type:           orderType,
			Status:         domain.OrderStatusInProgress,
			IdempotencyKey: in.IdempotencyKey,
			Lines:          lines,
			CreatedAt:      now,
		}

		orderID, err := s.repo.InsertOrder(txCtx, order)
		if err != nil {
			return err
		}
		if err := s.repo.ReserveBay(txCtx, in.BayID); err != nil {
			return err
		}
		if err := s.repo.AssignEmployee(txCtx, in.EmployeeID); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			if err := s.repo.InsertIdempotencyRecord(txCtx, in.IdempotencyKey, orderID); err != nil {
				return err
			}
		}

		order.ID = orderID
		result = CreateOrderResult{Order: order, Created: true}
		return nil
	})
	if err != nil {
		// A concurrent request with the same key won the insert race and
		// committed. Our transaction rolled back, so read the winner.
		if errors.Is(err, domain.ErrDuplicateKey) && in.IdempotencyKey != "" {
			existing, ferr := s.repo.FindOrderByIdempotencyKey(ctx, in.IdempotencyKey)
			if ferr != nil {
				return CreateOrderResult{}, ferr
			}
			if existing != nil {
				result = CreateOrderResult{Order: *existing}
				s.afterCreate(ctx, in.IdempotencyKey, result)
				return result, nil
			}
		}
		return CreateOrderResult{}, err
	}

	s.afterCreate(ctx, in.IdempotencyKey, result)
	return result, nil
}

func (s *Registry) afterCreate(ctx context.Context, key string, result CreateOrderResult) {
	if s.cache != nil {
		if key != "" {
			s.cache.SetOrderID(ctx, key, result.Order.ID)
		}
		s.cache.SetOrderStatus(ctx, result.Order.ID, result.Order.Status)
	}
	if s.events != nil && result.Created {
		s.events.OrderCreated(ctx, result.Order)
	}
}

// GetOrder returns an order with its lines resolved.
func (s *Registry) GetOrder(ctx context.Context, orderID int64) (domain.ServiceOrder, error) {
	return s.repo.GetOrder(ctx, orderID)
}
