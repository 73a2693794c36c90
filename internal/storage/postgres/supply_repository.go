package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jgdelacruz/washbay/internal/domain"
)

type SupplyRepository struct {
	pool *pgxpool.Pool
}

func NewSupplyRepository(pool *pgxpool.Pool) *SupplyRepository {
	return &SupplyRepository{pool: pool}
}

func (r *SupplyRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *SupplyRepository) GetSupplyForUpdate(ctx context.Context, supplyID int64) (domain.Supply, error) {
	const query = `SELECT id, name, unit, stock FROM supplies WHERE id = $1 FOR UPDATE`

	var s domain.Supply
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, supplyID).
		Scan(&s.ID, &s.Name, &s.Unit, &s.Stock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Supply{}, domain.ErrSupplyNotFound
		}
		return domain.Supply{}, fmt.Errorf("get supply: %w", err)
	}
	return s, nil
}

func (r *SupplyRepository) SetStock(ctx context.Context, supplyID int64, stock int) error {
	const stmt = `UPDATE supplies SET stock = $2 WHERE id = $1`

	tag, err := querierFrom(ctx, r.pool).Exec(ctx, stmt, supplyID, stock)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSupplyNotFound
	}
	return nil
}

func (r *SupplyRepository) InsertMovement(ctx context.Context, movement domain.SupplyMovement) (int64, error) {
	const stmt = `
INSERT INTO supply_movements (supply_id, quantity, kind, moved_at)
VALUES ($1, $2, $3, $4)
RETURNING id`

	var movementID int64
	err := querierFrom(ctx, r.pool).QueryRow(ctx, stmt,
		movement.SupplyID,
		movement.Quantity,
		movement.Kind,
		movement.MovedAt,
	).Scan(&movementID)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	return movementID, nil
}
