package events

import (
	"encoding/json"
	"time"
)

const TopicServiceOrders = "washbay.service-orders.v1"

const (
	EventOrderCreated   = "ServiceOrderCreated"
	EventOrderCompleted = "ServiceOrderCompleted"
	EventOrderCancelled = "ServiceOrderCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type LinePayload struct {
	ServiceVariantID int64  `json:"service_variant_id"`
	Quantity         int    `json:"quantity"`
	Price            string `json:"price"`
}

type OrderCreatedPayload struct {
	ServiceOrderID int64         `json:"service_order_id"`
	CustomerID     int64         `json:"customer_id"`
	BayID          *int64        `json:"bay_id"`
	EmployeeID     *int64        `json:"employee_id"`
	OrderType      string        `json:"order_type"`
	Lines          []LinePayload `json:"lines"`
	Total          string        `json:"total"`
}

type OrderSettledPayload struct {
	ServiceOrderID int64  `json:"service_order_id"`
	Status         string `json:"status"`
	Total          string `json:"total"`
}

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// UnwrapPayload decodes an envelope payload into a concrete event type.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(payload, &t)
	return t, err
}
