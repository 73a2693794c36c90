package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jgdelacruz/washbay/internal/domain"
	"github.com/samber/lo"
)

type RegistryRepository struct {
	pool *pgxpool.Pool
}

func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const orderColumns = `id, customer_id, employee_id, bay_id, order_type, status, idempotency_key, created_at`

func (r *RegistryRepository) FindOrderByIdempotencyKey(ctx context.Context, key string) (*domain.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE idempotency_key = $1`

	q := querierFrom(ctx, r.pool)
	order, err := scanOrder(q.QueryRow(ctx, query, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by idempotency key: %w", err)
	}

	order.Lines, err = loadOrderLines(ctx, q, order.ID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *RegistryRepository) GetOrder(ctx context.Context, orderID int64) (domain.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1`

	q := querierFrom(ctx, r.pool)
	order, err := scanOrder(q.QueryRow(ctx, query, orderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ServiceOrder{}, domain.ErrOrderNotFound
		}
		return domain.ServiceOrder{}, fmt.Errorf("get order: %w", err)
	}

	order.Lines, err = loadOrderLines(ctx, q, order.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	return order, nil
}

func (r *RegistryRepository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, customerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("customer exists: %w", err)
	}
	return exists, nil
}

func (r *RegistryRepository) GetBay(ctx context.Context, bayID int64) (domain.Bay, error) {
	const query = `SELECT id, label, status FROM bays WHERE id = $1`

	var b domain.Bay
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, bayID).Scan(&b.ID, &b.Label, &b.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Bay{}, domain.ErrBayNotFound
		}
		return domain.Bay{}, fmt.Errorf("get bay: %w", err)
	}
	return b, nil
}

func (r *RegistryRepository) GetEmployee(ctx context.Context, employeeID int64) (domain.Employee, error) {
	const query = `SELECT id, name, status, assigned_status FROM employees WHERE id = $1`

	var e domain.Employee
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, employeeID).
		Scan(&e.ID, &e.Name, &e.Status, &e.AssignedStatus)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Employee{}, domain.ErrEmployeeNotFound
		}
		return domain.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (r *RegistryRepository) GetVariants(ctx context.Context, variantIDs []int64) ([]domain.ServiceVariant, error) {
	const query = `
SELECT id, service_id, size_label, price, est_minutes
FROM service_variants
WHERE id = ANY($1)`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("get variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.ServiceVariant
	for rows.Next() {
		var v domain.ServiceVariant
		if err := rows.Scan(&v.ID, &v.ServiceID, &v.SizeLabel, &v.Price, &v.EstMinutes); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get variants: %w", err)
	}
	return variants, nil
}

func (r *RegistryRepository) InsertOrder(ctx context.Context, order domain.ServiceOrder) (int64, error) {
	const stmt = `
INSERT INTO service_orders (customer_id, employee_id, bay_id, order_type, status, idempotency_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	q := querierFrom(ctx, r.pool)

	var key *string
	if order.IdempotencyKey != "" {
		key = lo.ToPtr(order.IdempotencyKey)
	}

	var orderID int64
	err := q.QueryRow(ctx, stmt,
		order.CustomerID,
		order.EmployeeID,
		order.BayID,
		order.Type,
		order.Status,
		key,
		order.CreatedAt,
	).Scan(&orderID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}

	const lineStmt = `
INSERT INTO order_lines (service_order_id, service_variant_id, quantity)
VALUES ($1, $2, $3)`

	for _, line := range order.Lines {
		if _, err := q.Exec(ctx, lineStmt, orderID, line.VariantID, line.Quantity); err != nil {
			return 0, fmt.Errorf("insert order line: %w", err)
		}
	}
	return orderID, nil
}

func (r *RegistryRepository) ReserveBay(ctx context.Context, bayID int64) error {
	const stmt = `UPDATE bays SET status = 'occupied' WHERE id = $1 AND status = 'available'`

	tag, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, bayID)
	if err != nil {
		return fmt.Errorf("reserve bay: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBayUnavailable
	}
	return nil
}

func (r *RegistryRepository) AssignEmployee(ctx context.Context, employeeID int64) error {
	const stmt = `
UPDATE employees SET assigned_status = 'assigned'
WHERE id = $1 AND status = 'active' AND assigned_status = 'available'`

	tag, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, employeeID)
	if err != nil {
		return fmt.Errorf("assign employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployeeUnavailable
	}
	return nil
}

func (r *RegistryRepository) InsertIdempotencyRecord(ctx context.Context, key string, orderID int64) error {
	const stmt = `INSERT INTO idempotency_keys (key, service_order_id) VALUES ($1, $2)`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, key, orderID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("insert idempotency record: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.ServiceOrder, error) {
	var (
		o   domain.ServiceOrder
		key *string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.EmployeeID, &o.BayID, &o.Type, &o.Status, &key, &o.CreatedAt)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	o.IdempotencyKey = lo.FromPtr(key)
	return o, nil
}

func loadOrderLines(ctx context.Context, q querier, orderID int64) ([]domain.OrderLine, error) {
	const query = `
SELECT ol.id, ol.service_variant_id, ol.quantity, sv.price, sv.size_label
FROM order_lines ol
JOIN service_variants sv ON sv.id = ol.service_variant_id
WHERE ol.service_order_id = $1
ORDER BY ol.id`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.VariantID, &line.Quantity, &line.Price, &line.SizeLabel); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	return lines, nil
}
