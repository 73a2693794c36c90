package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jgdelacruz/washbay/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidID           = "invalid_id"
	codeVariantListRequired = "variant_list_required"
	codeInvalidQuantity     = "invalid_quantity"
	codeInvalidOrderType    = "invalid_order_type"
	codeCustomerNotFound    = "customer_not_found"
	codeEmployeeNotFound    = "employee_not_found"
	codeBayNotFound         = "bay_not_found"
	codeVariantNotFound     = "service_variant_not_found"
	codeOrderNotFound       = "service_order_not_found"
	codeSupplyNotFound      = "supply_not_found"
	codeBayUnavailable      = "bay_unavailable"
	codeEmployeeUnavailable = "employee_unavailable"
	codeOrderNotInProgress  = "order_not_in_progress"
	codeOrderAlreadyPaid    = "order_already_paid"
	codePaymentMismatch     = "payment_mismatch"
	codeInsufficientStock   = "insufficient_stock"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps domain errors onto the HTTP error taxonomy:
// validation 400/422, dangling references 404, busy resources 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoVariants):
		writeError(w, http.StatusBadRequest, codeVariantListRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, codeCustomerNotFound, err.Error())
	case errors.Is(err, domain.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, codeEmployeeNotFound, err.Error())
	case errors.Is(err, domain.ErrBayNotFound):
		writeError(w, http.StatusNotFound, codeBayNotFound, err.Error())
	case errors.Is(err, domain.ErrVariantNotFound):
		writeError(w, http.StatusNotFound, codeVariantNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrSupplyNotFound):
		writeError(w, http.StatusNotFound, codeSupplyNotFound, err.Error())
	case errors.Is(err, domain.ErrBayUnavailable):
		writeError(w, http.StatusConflict, codeBayUnavailable, err.Error())
	case errors.Is(err, domain.ErrEmployeeUnavailable):
		writeError(w, http.StatusConflict, codeEmployeeUnavailable, err.Error())
	case errors.Is(err, domain.ErrOrderNotInProgress):
		writeError(w, http.StatusConflict, codeOrderNotInProgress, err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyPaid):
		writeError(w, http.StatusConflict, codeOrderAlreadyPaid, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
	case errors.Is(err, domain.ErrPaymentMismatch):
		writeError(w, http.StatusUnprocessableEntity, codePaymentMismatch, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
