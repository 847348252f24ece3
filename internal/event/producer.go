package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	pkgkafka "github.com/Wjwesley1/queen-store-frontend/pkg/kafka"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

// TopicOrderSubmitted receives one event per checkout submission, recorded or not.
var TopicOrderSubmitted = pkgkafka.Topic("order", "submitted")

const (
	EventOrderSubmitted = "order.submitted"
	AggregateTypeOrder  = "order"
	SourceStorefront    = "storefront"
)

// OrderSubmittedData is the payload for an order.submitted event.
type OrderSubmittedData struct {
	SessionID  string             `json:"session_id"`
	OrderID    string             `json:"order_id,omitempty"`
	Status     domain.OrderStatus `json:"status"`
	Total      domain.Price       `json:"valor_total"`
	Items      []domain.OrderItem `json:"itens"`
	OrderError string             `json:"order_error,omitempty"`
}

// Producer publishes storefront order events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderSubmitted publishes the outcome of a submission. A partial
// failure is keyed by the session id since there is no order id.
func (p *Producer) PublishOrderSubmitted(ctx context.Context, sessionID string, result *domain.OrderResult) error {
	if result == nil {
		return fmt.Errorf("publish order.submitted: nil result")
	}

	data := OrderSubmittedData{
		SessionID: sessionID,
		OrderID:   result.OrderID,
		Status:    result.Status,
		Total:     result.Draft.Total,
		Items:     result.Draft.Items,
	}
	if result.OrderError != nil {
		data.OrderError = result.OrderError.Error()
	}

	aggregateID := result.OrderID
	if aggregateID == "" {
		aggregateID = sessionID
	}

	event, err := pkgkafka.NewEvent(EventOrderSubmitted, aggregateID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.submitted event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("session_id", sessionID).
		WithMetadata("customer_id", logger.CustomerIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicOrderSubmitted, event); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "published order.submitted event",
		slog.String("aggregate_id", aggregateID),
		slog.String("status", string(result.Status)),
	)
	return nil
}

// Ping checks broker reachability.
func (p *Producer) Ping(ctx context.Context) error {
	return p.kafka.Ping(ctx)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.kafka.Close()
}
