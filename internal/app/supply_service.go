package app

import (
	"context"

	"github.com/jgdelacruz/washbay/internal/clock"
	"github.com/jgdelacruz/washbay/internal/domain"
)

type SupplyRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetSupplyForUpdate(ctx context.Context, supplyID int64) (domain.Supply, error)
	SetStock(ctx context.Context, supplyID int64, stock int) error
	InsertMovement(ctx context.Context, movement domain.SupplyMovement) (int64, error)
}

// Supplies applies stock movements: pullouts for bay consumption and
// restocks from deliveries.
type Supplies struct {
	repo  SupplyRepository
	clock clock.Clock
}

func NewSupplies(repo SupplyRepository, clk clock.Clock) *Supplies {
	return &Supplies{
		repo:  repo,
		clock: clk,
	}
}

// Pullout removes qty units of a supply. The stock row is locked for the
// duration of the transaction; a shortage rejects the whole movement.
func (s *Supplies) Pullout(ctx context.Context, supplyID int64, qty int) (domain.Supply, error) {
	return s.move(ctx, supplyID, qty, domain.MovementPullout)
}

// Restock adds qty units of a supply.
func (s *Supplies) Restock(ctx context.Context, supplyID int64, qty int) (domain.Supply, error) {
	return s.move(ctx, supplyID, qty, domain.MovementRestock)
}

func (s *Supplies) move(ctx context.Context, supplyID int64, qty int, kind domain.MovementKind) (domain.Supply, error) {
	if qty < 1 {
		return domain.Supply{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var supply domain.Supply

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		supply, err = s.repo.GetSupplyForUpdate(txCtx, supplyID)
		if err != nil {
			return err
		}

		switch kind {
		case domain.MovementPullout:
			if supply.Stock < qty {
				return domain.ErrInsufficientStock
			}
			supply.Stock -= qty
		case domain.MovementRestock:
			supply.Stock += qty
		}

		if err := s.repo.SetStock(txCtx, supplyID, supply.Stock); err != nil {
			return err
		}
		_, err = s.repo.InsertMovement(txCtx, domain.SupplyMovement{
			SupplyID: supplyID,
			Quantity: qty,
			Kind:     kind,
			MovedAt:  now,
		})
		return err
	})
	if err != nil {
		return domain.Supply{}, err
	}

	return supply, nil
}
