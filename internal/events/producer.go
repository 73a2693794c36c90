package events

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jgdelacruz/washbay/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Producer publishes order lifecycle events to Kafka. Publishing is
// fire-and-forget: a broker failure is logged, never surfaced to the
// request that triggered it.
type Producer struct {
	w       *kafkago.Writer
	service string
	logger  *log.Logger
}

func NewProducer(brokers []string, service string, logger *log.Logger) *Producer {
	if logger == nil {
		logger = log.Default()
	}
	return &Producer{
		w: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  TopicServiceOrders,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			AllowAutoTopicCreation: true,
		},
		service: service,
		logger:  logger,
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

func (p *Producer) OrderCreated(ctx context.Context, order domain.ServiceOrder) {
	lines := make([]LinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, LinePayload{
			ServiceVariantID: line.VariantID,
			Quantity:         line.Quantity,
			Price:            line.Price.StringFixed(2),
		})
	}
	p.publish(ctx, EventOrderCreated, order.ID, OrderCreatedPayload{
		ServiceOrderID: order.ID,
		CustomerID:     order.CustomerID,
		BayID:          order.BayID,
		EmployeeID:     order.EmployeeID,
		OrderType:      string(order.Type),
		Lines:          lines,
		Total:          order.Total().StringFixed(2),
	})
}

func (p *Producer) OrderSettled(ctx context.Context, order domain.ServiceOrder) {
	eventType := EventOrderCompleted
	if order.Status == domain.OrderStatusCancelled {
		eventType = EventOrderCancelled
	}
	p.publish(ctx, eventType, order.ID, OrderSettledPayload{
		ServiceOrderID: order.ID,
		Status:         string(order.Status),
		Total:          order.Total().StringFixed(2),
	})
}

func (p *Producer) publish(ctx context.Context, eventType string, orderID int64, payload any) {
	key := strconv.FormatInt(orderID, 10)
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: key,
		Payload:       MustMarshal(payload),
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: MustMarshal(env),
		Headers: []kafkago.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.logger.Printf("WARN: publish %s for order %d: %v", eventType, orderID, err)
	}
}
