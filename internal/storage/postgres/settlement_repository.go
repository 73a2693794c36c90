package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jgdelacruz/washbay/internal/domain"
)

type SettlementRepository struct {
	pool *pgxpool.Pool
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

func (r *SettlementRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *SettlementRepository) GetOrderForUpdate(ctx context.Context, orderID int64) (domain.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1 FOR UPDATE`

	q := querierFrom(ctx, r.pool)
	order, err := scanOrder(q.QueryRow(ctx, query, orderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ServiceOrder{}, domain.ErrOrderNotFound
		}
		return domain.ServiceOrder{}, fmt.Errorf("get order for update: %w", err)
	}

	order.Lines, err = loadOrderLines(ctx, q, order.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	return order, nil
}

func (r *SettlementRepository) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	const stmt = `UPDATE service_orders SET status = $2 WHERE id = $1`

	tag, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, orderID, status)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ReleaseBay flips an occupied bay back to available. A bay moved to
// maintenance in the meantime is left alone.
func (r *SettlementRepository) ReleaseBay(ctx context.Context, bayID int64) error {
	const stmt = `UPDATE bays SET status = 'available' WHERE id = $1 AND status = 'occupied'`

	if _, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, bayID); err != nil {
		return fmt.Errorf("release bay: %w", err)
	}
	return nil
}

// ReleaseEmployee frees an assigned employee. An employee put on leave in
// the meantime is left alone.
func (r *SettlementRepository) ReleaseEmployee(ctx context.Context, employeeID int64) error {
	const stmt = `
UPDATE employees SET assigned_status = 'available'
WHERE id = $1 AND assigned_status = 'assigned'`

	if _, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, employeeID); err != nil {
		return fmt.Errorf("release employee: %w", err)
	}
	return nil
}

func (r *SettlementRepository) InsertPayment(ctx context.Context, payment domain.Payment) (int64, error) {
	const stmt = `
INSERT INTO payments (service_order_id, amount, method, paid_at)
VALUES ($1, $2, $3, $4)
RETURNING id`

	var paymentID int64
	err := querierFrom(ctx, r.pool).QueryRow(ctx, stmt,
		payment.OrderID,
		payment.Amount,
		payment.Method,
		payment.PaidAt,
	).Scan(&paymentID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrOrderAlreadyPaid
		}
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return paymentID, nil
}
