package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jgdelacruz/washbay/internal/domain"
)

type CrewRepository struct {
	pool *pgxpool.Pool
}

func NewCrewRepository(pool *pgxpool.Pool) *CrewRepository {
	return &CrewRepository{pool: pool}
}

func (r *CrewRepository) ActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	const query = `
SELECT id, name, status, assigned_status
FROM employees
WHERE status = 'active'
ORDER BY id`

	return r.queryEmployees(ctx, query)
}

func (r *CrewRepository) FreeEmployees(ctx context.Context) ([]domain.Employee, error) {
	const query = `
SELECT id, name, status, assigned_status
FROM employees
WHERE status = 'active' AND assigned_status = 'available'
ORDER BY id`

	return r.queryEmployees(ctx, query)
}

func (r *CrewRepository) FreeBays(ctx context.Context) ([]domain.Bay, error) {
	const query = `SELECT id, label, status FROM bays WHERE status = 'available' ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("free bays: %w", err)
	}
	defer rows.Close()

	var bays []domain.Bay
	for rows.Next() {
		var b domain.Bay
		if err := rows.Scan(&b.ID, &b.Label, &b.Status); err != nil {
			return nil, fmt.Errorf("scan bay: %w", err)
		}
		bays = append(bays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("free bays: %w", err)
	}
	return bays, nil
}

func (r *CrewRepository) queryEmployees(ctx context.Context, query string) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Status, &e.AssignedStatus); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	return employees, nil
}
