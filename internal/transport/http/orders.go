package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jgdelacruz/washbay/internal/app"
	"github.com/jgdelacruz/washbay/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderRegistrar is the minimal interface needed to register and read orders.
type OrderRegistrar interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (app.CreateOrderResult, error)
	GetOrder(ctx context.Context, orderID int64) (domain.ServiceOrder, error)
}

// OrderSettler is the minimal interface needed to close out orders.
type OrderSettler interface {
	CompleteOrder(ctx context.Context, orderID int64, in app.PaymentInput) (domain.ServiceOrder, domain.Payment, error)
	CancelOrder(ctx context.Context, orderID int64) (domain.ServiceOrder, error)
}

// StatusCache serves cached order statuses; may be nil.
type StatusCache interface {
	GetOrderStatus(ctx context.Context, orderID int64) (domain.OrderStatus, bool)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus)
}

const replayedMessage = "Service order already created"

// HandleCreateOrder returns the handler for the order registry endpoint.
// First-time creation answers 201; an idempotent replay answers 200 with
// the original order.
func HandleCreateOrder(svc OrderRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if code, err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, code, err.Error())
			return
		}

		res, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
			CustomerID:     req.CustomerID,
			BayID:          req.BayID,
			EmployeeID:     req.EmployeeID,
			VariantIDs:     req.VariantIDs,
			Quantities:     req.Quantities,
			Type:           domain.OrderType(req.OrderType),
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := orderEnvelope{Order: toOrderRepresentation(res.Order)}
		status := http.StatusCreated
		if !res.Created {
			resp.Message = replayedMessage
			status = http.StatusOK
		}
		writeJSON(w, status, resp)
	}
}

// HandleGetOrder returns an order with its lines resolved.
func HandleGetOrder(svc OrderRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orderEnvelope{Order: toOrderRepresentation(order)})
	}
}

// HandleOrderStatus answers status lookups from the cache when possible,
// falling back to storage and warming the cache on a miss.
func HandleOrderStatus(svc OrderRegistrar, cache StatusCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		if cache != nil {
			if status, hit := cache.GetOrderStatus(r.Context(), orderID); hit {
				writeJSON(w, http.StatusOK, orderStatusResponse{ServiceOrderID: orderID, Status: string(status)})
				return
			}
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if cache != nil {
			cache.SetOrderStatus(r.Context(), orderID, order.Status)
		}
		writeJSON(w, http.StatusOK, orderStatusResponse{ServiceOrderID: orderID, Status: string(order.Status)})
	}
}

// HandleCompleteOrder completes an in-progress order and records its payment.
func HandleCompleteOrder(svc OrderSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		var req completeOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		order, payment, err := svc.CompleteOrder(r.Context(), orderID, app.PaymentInput{
			Amount: req.Amount,
			Method: req.Method,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, completeOrderResponse{
			Order: toOrderRepresentation(order),
			Payment: paymentRepresentation{
				PaymentID: payment.ID,
				Amount:    payment.Amount.StringFixed(2),
				Method:    payment.Method,
				PaidAt:    payment.PaidAt,
			},
		})
	}
}

// HandleCancelOrder cancels an in-progress order and frees its resources.
func HandleCancelOrder(svc OrderSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		order, err := svc.CancelOrder(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orderEnvelope{Order: toOrderRepresentation(order)})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type createOrderRequest struct {
	CustomerID     int64   `json:"customer_id"`
	BayID          int64   `json:"bay_id"`
	EmployeeID     int64   `json:"employee_id"`
	VariantIDs     []int64 `json:"variant_ids"`
	Quantities     []int   `json:"quantities,omitempty"`
	OrderType      string  `json:"order_type,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

func (r createOrderRequest) validate() (string, error) {
	if r.CustomerID < 1 || r.BayID < 1 || r.EmployeeID < 1 {
		return codeInvalidID, errors.New("customer_id, bay_id and employee_id are required")
	}
	if len(r.VariantIDs) == 0 {
		return codeVariantListRequired, domain.ErrNoVariants
	}
	if r.Quantities != nil && len(r.Quantities) != len(r.VariantIDs) {
		return codeInvalidQuantity, domain.ErrInvalidQuantity
	}
	for _, q := range r.Quantities {
		if q < 1 {
			return codeInvalidQuantity, domain.ErrInvalidQuantity
		}
	}
	switch r.OrderType {
	case "", string(domain.OrderTypeWalkIn), string(domain.OrderTypeReservation):
	default:
		return codeInvalidOrderType, errors.New("order_type must be walk_in or reservation")
	}
	return "", nil
}

type completeOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type orderEnvelope struct {
	Message string              `json:"message,omitempty"`
	Order   orderRepresentation `json:"order"`
}

type orderRepresentation struct {
	ServiceOrderID int64                `json:"service_order_id"`
	UserID         int64                `json:"user_id"`
	BayID          *int64               `json:"bay_id"`
	EmployeeID     *int64               `json:"employee_id"`
	OrderType      string               `json:"order_type"`
	Status         string               `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	Lines          []lineRepresentation `json:"lines"`
	Total          string               `json:"total"`
}

type lineRepresentation struct {
	ServiceVariantID int64  `json:"service_variant_id"`
	Quantity         int    `json:"quantity"`
	Price            string `json:"price"`
	SizeLabel        string `json:"size_label"`
}

type orderStatusResponse struct {
	ServiceOrderID int64  `json:"service_order_id"`
	Status         string `json:"status"`
}

type completeOrderResponse struct {
	Order   orderRepresentation   `json:"order"`
	Payment paymentRepresentation `json:"payment"`
}

type paymentRepresentation struct {
	PaymentID int64     `json:"payment_id"`
	Amount    string    `json:"amount"`
	Method    string    `json:"method"`
	PaidAt    time.Time `json:"paid_at"`
}

func toOrderRepresentation(order domain.ServiceOrder) orderRepresentation {
	lines := make([]lineRepresentation, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, lineRepresentation{
			ServiceVariantID: line.VariantID,
			Quantity:         line.Quantity,
			Price:            line.Price.StringFixed(2),
			SizeLabel:        line.SizeLabel,
		})
	}
	return orderRepresentation{
		ServiceOrderID: order.ID,
		UserID:         order.CustomerID,
		BayID:          order.BayID,
		EmployeeID:     order.EmployeeID,
		OrderType:      string(order.Type),
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		Lines:          lines,
		Total:          order.Total().StringFixed(2),
	}
}
