package app

import (
	"context"
	"testing"
	"time"

	"github.com/jgdelacruz/washbay/internal/clock"
	"github.com/jgdelacruz/washbay/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("creates order, reserves bay, assigns employee", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		basic := repo.addVariant("Small", "150.00")
		wax := repo.addVariant("Medium", "250.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID:     custID,
			BayID:          bayID,
			EmployeeID:     empID,
			VariantIDs:     []int64{basic, wax},
			IdempotencyKey: "idem-1",
		})
		require.NoError(t, err)
		require.True(t, res.Created)
		require.NotZero(t, res.Order.ID)

		assert.Equal(t, domain.OrderStatusInProgress, res.Order.Status)
		assert.Equal(t, domain.OrderTypeWalkIn, res.Order.Type)
		assert.Equal(t, now, res.Order.CreatedAt)
		require.Len(t, res.Order.Lines, 2)
		assert.Equal(t, 1, res.Order.Lines[0].Quantity)
		assert.True(t, res.Order.Total().Equal(decimal.RequireFromString("400.00")),
			"total %s", res.Order.Total())

		assert.Equal(t, domain.BayStatusOccupied, repo.bays[bayID].Status)
		assert.Equal(t, domain.AssignedStatusAssigned, repo.employees[empID].AssignedStatus)
		assert.Equal(t, res.Order.ID, repo.ledger["idem-1"])
	})

	t.Run("quantities multiply into the total", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Large", "100.50")

		svc := NewRegistry(repo, clock.NewFixed(now))

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: custID,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID},
			Quantities: []int{3},
		})
		require.NoError(t, err)
		assert.True(t, res.Order.Total().Equal(decimal.RequireFromString("301.50")))
	})

	t.Run("replayed key returns existing order without touching resources", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))
		in := CreateOrderInput{
			CustomerID:     custID,
			BayID:          bayID,
			EmployeeID:     empID,
			VariantIDs:     []int64{variantID},
			IdempotencyKey: "idem-replay",
		}

		first, err := svc.CreateOrder(context.Background(), in)
		require.NoError(t, err)
		require.True(t, first.Created)

		second, err := svc.CreateOrder(context.Background(), in)
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.Order.ID, second.Order.ID)

		// The bay went occupied on the first call; a fresh attempt would
		// have failed, so the replay must not have tried to reserve again.
		assert.Equal(t, 1, repo.reserveCalls)
	})

	t.Run("insert race loser reads the winner", func(t *testing.T) {
		winner := domain.ServiceOrder{
			ID:             77,
			CustomerID:     1,
			Status:         domain.OrderStatusInProgress,
			IdempotencyKey: "idem-race",
			CreatedAt:      now,
		}
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")
		repo.raceWinner = &winner

		svc := NewRegistry(repo, clock.NewFixed(now))

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID:     custID,
			BayID:          bayID,
			EmployeeID:     empID,
			VariantIDs:     []int64{variantID},
			IdempotencyKey: "idem-race",
		})
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, winner.ID, res.Order.ID)
	})

	t.Run("occupied bay rejects the order", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusOccupied)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: custID,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID},
		})
		require.ErrorIs(t, err, domain.ErrBayUnavailable)
		assert.Empty(t, repo.orders)
	})

	t.Run("absent employee rejects the order", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusAbsent, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: custID,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID},
		})
		require.ErrorIs(t, err, domain.ErrEmployeeUnavailable)
	})

	t.Run("assigned employee rejects the order", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAssigned)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: custID,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID},
		})
		require.ErrorIs(t, err, domain.ErrEmployeeUnavailable)
	})

	t.Run("unknown customer rejects the order", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: 999,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID},
		})
		require.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})

	t.Run("unknown variant leaves nothing behind", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: custID,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID, 12345},
		})
		require.ErrorIs(t, err, domain.ErrVariantNotFound)
		assert.Empty(t, repo.orders)
		assert.Equal(t, domain.BayStatusAvailable, repo.bays[bayID].Status)
	})

	t.Run("empty variant list is rejected", func(t *testing.T) {
		svc := NewRegistry(newFakeRegistryRepo(), clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: 1, BayID: 1, EmployeeID: 1,
		})
		require.ErrorIs(t, err, domain.ErrNoVariants)
	})

	t.Run("quantity validation", func(t *testing.T) {
		svc := NewRegistry(newFakeRegistryRepo(), clock.NewFixed(now))

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: 1, BayID: 1, EmployeeID: 1,
			VariantIDs: []int64{1, 2},
			Quantities: []int{1},
		})
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)

		_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: 1, BayID: 1, EmployeeID: 1,
			VariantIDs: []int64{1},
			Quantities: []int{0},
		})
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})

	t.Run("no key skips the ledger", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")

		svc := NewRegistry(repo, clock.NewFixed(now))

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: custID,
			BayID:      bayID,
			EmployeeID: empID,
			VariantIDs: []int64{variantID},
		})
		require.NoError(t, err)
		require.True(t, res.Created)
		assert.Empty(t, repo.ledger)
	})

	t.Run("cache hit skips the transaction", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		order := domain.ServiceOrder{
			ID:             42,
			Status:         domain.OrderStatusInProgress,
			IdempotencyKey: "idem-cached",
			CreatedAt:      now,
		}
		repo.orders[order.ID] = order
		cache := &fakeCache{orderIDs: map[string]int64{"idem-cached": 42}}

		svc := NewRegistry(repo, clock.NewFixed(now), WithIdempotencyCache(cache))

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID:     1,
			BayID:          1,
			EmployeeID:     1,
			VariantIDs:     []int64{1},
			IdempotencyKey: "idem-cached",
		})
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, int64(42), res.Order.ID)
		assert.Zero(t, repo.txCalls)
	})

	t.Run("events fire only for fresh orders", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		bayID := repo.addBay(domain.BayStatusAvailable)
		empID := repo.addEmployee(domain.EmployeeStatusActive, domain.AssignedStatusAvailable)
		custID := repo.addCustomer()
		variantID := repo.addVariant("Small", "150.00")
		sink := &fakeEvents{}

		svc := NewRegistry(repo, clock.NewFixed(now), WithOrderEvents(sink))
		in := CreateOrderInput{
			CustomerID:     custID,
			BayID:          bayID,
			EmployeeID:     empID,
			VariantIDs:     []int64{variantID},
			IdempotencyKey: "idem-ev",
		}

		_, err := svc.CreateOrder(context.Background(), in)
		require.NoError(t, err)
		_, err = svc.CreateOrder(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, 1, sink.created)
	})
}

type fakeRegistryRepo struct {
	customers map[int64]bool
	bays      map[int64]domain.Bay
	employees map[int64]domain.Employee
	variants  map[int64]domain.ServiceVariant
	orders    map[int64]domain.ServiceOrder
	ledger    map[string]int64

	nextID       int64
	txCalls      int
	reserveCalls int

	// raceWinner simulates a concurrent committed order: the in-tx lookup
	// misses, the insert hits the unique index, and the post-rollback
	// lookup finds the winner.
	raceWinner *domain.ServiceOrder
	raceLooked bool
}

func newFakeRegistryRepo() *fakeRegistryRepo {
	return &fakeRegistryRepo{
		customers: make(map[int64]bool),
		bays:      make(map[int64]domain.Bay),
		employees: make(map[int64]domain.Employee),
		variants:  make(map[int64]domain.ServiceVariant),
		orders:    make(map[int64]domain.ServiceOrder),
		ledger:    make(map[string]int64),
	}
}

func (f *fakeRegistryRepo) addCustomer() int64 {
	id := f.next()
	f.customers[id] = true
	return id
}

func (f *fakeRegistryRepo) addBay(status domain.BayStatus) int64 {
	id := f.next()
	f.bays[id] = domain.Bay{ID: id, Label: "Bay", Status: status}
	return id
}

func (f *fakeRegistryRepo) addEmployee(status domain.EmployeeStatus, assigned domain.AssignedStatus) int64 {
	id := f.next()
	f.employees[id] = domain.Employee{ID: id, Name: "Crew", Status: status, AssignedStatus: assigned}
	return id
}

func (f *fakeRegistryRepo) addVariant(size, price string) int64 {
	id := f.next()
	f.variants[id] = domain.ServiceVariant{
		ID:        id,
		ServiceID: 1,
		SizeLabel: size,
		Price:     decimal.RequireFromString(price),
	}
	return id
}

func (f *fakeRegistryRepo) next() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRegistryRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txCalls++
	return fn(ctx)
}

func (f *fakeRegistryRepo) FindOrderByIdempotencyKey(_ context.Context, key string) (*domain.ServiceOrder, error) {
	if f.raceWinner != nil && f.raceWinner.IdempotencyKey == key {
		if f.raceLooked {
			return lo.ToPtr(*f.raceWinner), nil
		}
		f.raceLooked = true
		return nil, nil
	}
	orderID, ok := f.ledger[key]
	if !ok {
		return nil, nil
	}
	order := f.orders[orderID]
	return &order, nil
}

func (f *fakeRegistryRepo) CustomerExists(_ context.Context, customerID int64) (bool, error) {
	return f.customers[customerID], nil
}

func (f *fakeRegistryRepo) GetBay(_ context.Context, bayID int64) (domain.Bay, error) {
	bay, ok := f.bays[bayID]
	if !ok {
		return domain.Bay{}, domain.ErrBayNotFound
	}
	return bay, nil
}

func (f *fakeRegistryRepo) GetEmployee(_ context.Context, employeeID int64) (domain.Employee, error) {
	emp, ok := f.employees[employeeID]
	if !ok {
		return domain.Employee{}, domain.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeRegistryRepo) GetVariants(_ context.Context, variantIDs []int64) ([]domain.ServiceVariant, error) {
	out := make([]domain.ServiceVariant, 0, len(variantIDs))
	for _, id := range variantIDs {
		if v, ok := f.variants[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRegistryRepo) InsertOrder(_ context.Context, order domain.ServiceOrder) (int64, error) {
	if f.raceWinner != nil && order.IdempotencyKey == f.raceWinner.IdempotencyKey {
		return 0, domain.ErrDuplicateKey
	}
	order.ID = f.next()
	f.orders[order.ID] = order
	return order.ID, nil
}

func (f *fakeRegistryRepo) ReserveBay(_ context.Context, bayID int64) error {
	f.reserveCalls++
	bay, ok := f.bays[bayID]
	if !ok || bay.Status != domain.BayStatusAvailable {
		return domain.ErrBayUnavailable
	}
	bay.Status = domain.BayStatusOccupied
	f.bays[bayID] = bay
	return nil
}

func (f *fakeRegistryRepo) AssignEmployee(_ context.Context, employeeID int64) error {
	emp, ok := f.employees[employeeID]
	if !ok || !emp.Eligible() {
		return domain.ErrEmployeeUnavailable
	}
	emp.AssignedStatus = domain.AssignedStatusAssigned
	f.employees[employeeID] = emp
	return nil
}

func (f *fakeRegistryRepo) InsertIdempotencyRecord(_ context.Context, key string, orderID int64) error {
	if _, exists := f.ledger[key]; exists {
		return domain.ErrDuplicateKey
	}
	f.ledger[key] = orderID
	return nil
}

func (f *fakeRegistryRepo) GetOrder(_ context.Context, orderID int64) (domain.ServiceOrder, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.ServiceOrder{}, domain.ErrOrderNotFound
	}
	return order, nil
}

type fakeCache struct {
	orderIDs map[string]int64
	statuses map[int64]domain.OrderStatus
}

func (c *fakeCache) GetOrderID(_ context.Context, key string) (int64, bool) {
	id, ok := c.orderIDs[key]
	return id, ok
}

func (c *fakeCache) SetOrderID(_ context.Context, key string, orderID int64) {
	if c.orderIDs == nil {
		c.orderIDs = make(map[string]int64)
	}
	c.orderIDs[key] = orderID
}

func (c *fakeCache) SetOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) {
	if c.statuses == nil {
		c.statuses = make(map[int64]domain.OrderStatus)
	}
	c.statuses[orderID] = status
}

type fakeEvents struct {
	created int
	settled int
}

func (e *fakeEvents) OrderCreated(_ context.Context, _ domain.ServiceOrder) {
	e.created++
}

func (e *fakeEvents) OrderSettled(_ context.Context, _ domain.ServiceOrder) {
	e.settled++
}
