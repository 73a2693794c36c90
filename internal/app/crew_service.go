package app

import (
	"context"

	"github.com/jgdelacruz/washbay/internal/domain"
)

type CrewRepository interface {
	ActiveEmployees(ctx context.Context) ([]domain.Employee, error)
	FreeEmployees(ctx context.Context) ([]domain.Employee, error)
	FreeBays(ctx context.Context) ([]domain.Bay, error)
}

// Crew answers availability queries for employees and bays.
type Crew struct {
	repo CrewRepository
}

func NewCrew(repo CrewRepository) *Crew {
	return &Crew{repo: repo}
}

// ActiveEmployees returns every employee with status active, whether or
// not they are currently assigned to a bay.
func (s *Crew) ActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ActiveEmployees(ctx)
}

// FreeEmployees returns active employees not assigned to any order.
func (s *Crew) FreeEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.FreeEmployees(ctx)
}

func (s *Crew) FreeBays(ctx context.Context) ([]domain.Bay, error) {
	return s.repo.FreeBays(ctx)
}
