package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jgdelacruz/washbay/internal/domain"
)

// SupplyMover is the minimal interface needed for stock movements.
type SupplyMover interface {
	Pullout(ctx context.Context, supplyID int64, qty int) (domain.Supply, error)
	Restock(ctx context.Context, supplyID int64, qty int) (domain.Supply, error)
}

// HandleSupplyPullout removes stock for bay consumption; a shortage
// rejects the whole movement.
func HandleSupplyPullout(svc SupplyMover) http.HandlerFunc {
	return handleSupplyMove(func(ctx context.Context, svc SupplyMover, id int64, qty int) (domain.Supply, error) {
		return svc.Pullout(ctx, id, qty)
	}, svc)
}

// HandleSupplyRestock adds delivered stock.
func HandleSupplyRestock(svc SupplyMover) http.HandlerFunc {
	return handleSupplyMove(func(ctx context.Context, svc SupplyMover, id int64, qty int) (domain.Supply, error) {
		return svc.Restock(ctx, id, qty)
	}, svc)
}

func handleSupplyMove(move func(context.Context, SupplyMover, int64, int) (domain.Supply, error), svc SupplyMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplyID, ok := pathID(w, r)
		if !ok {
			return
		}

		var req supplyMoveRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Quantity < 1 {
			writeError(w, http.StatusBadRequest, codeInvalidQuantity, domain.ErrInvalidQuantity.Error())
			return
		}

		supply, err := move(r.Context(), svc, supplyID, req.Quantity)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, supplyResponse{
			Supply: supplyRepresentation{
				SupplyID: supply.ID,
				Name:     supply.Name,
				Unit:     supply.Unit,
				Stock:    supply.Stock,
			},
		})
	}
}

type supplyMoveRequest struct {
	Quantity int `json:"quantity"`
}

type supplyResponse struct {
	Supply supplyRepresentation `json:"supply"`
}

type supplyRepresentation struct {
	SupplyID int64  `json:"supply_id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Stock    int    `json:"stock"`
}
