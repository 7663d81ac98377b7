package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/config"
	"github.com/sergiohdezchi/order-processing-service/internal/domain"
	"github.com/sergiohdezchi/order-processing-service/internal/observability"
	"github.com/sergiohdezchi/order-processing-service/internal/pkg/breaker"
)

// OrderEvent is the wire shape published to the order-events topic.
type OrderEvent struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Writer is the producing side of kafka-go.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher emits order lifecycle events. It is strictly best-effort: a
// broker outage trips the breaker and later events are dropped and counted
// until the breaker lets a probe through.
type Publisher struct {
	writer  Writer
	breaker *breaker.Breaker
	logger  *zap.Logger
	metrics observability.Metrics
	timeout time.Duration
}

func NewPublisher(writer Writer, br *breaker.Breaker, logger *zap.Logger, metrics observability.Metrics) *Publisher {
	return &Publisher{
		writer:  writer,
		breaker: br,
		logger:  logger,
		metrics: metrics,
		timeout: 5 * time.Second,
	}
}

// NewWriter builds the kafka-go writer the way the brokers expect it:
// hash-balanced on the key so events for one order stay ordered.
func NewWriter(cfg config.Kafka) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func (p *Publisher) OrderAccepted(orderID string, status domain.Status) {
	if err := p.breaker.Allow(); err != nil {
		p.metrics.IncEventsDropped()
		p.logger.Warn("order event dropped, breaker open", zap.String("order_id", orderID))
		return
	}

	event := OrderEvent{
		OrderID:   orderID,
		Status:    string(status),
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.metrics.IncEventsDropped()
		p.logger.Error("marshal order event", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(orderID),
		Value: value,
	})
	if err != nil {
		p.breaker.Failure()
		p.metrics.IncEventsDropped()
		p.logger.Error("publish order event", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	p.breaker.Success()
	p.metrics.IncEventsPublished()
	p.logger.Debug("order event published",
		zap.String("order_id", orderID),
		zap.String("status", string(status)),
	)
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("error closing kafka writer", zap.Error(err))
	}
}
