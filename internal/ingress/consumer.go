// Package ingress consumes the order topic and decodes each message onto
// the bounded order channel the order book manager reads from (spec.md
// §4.1), following the teacher's watermill adapter style
// (internal/architecture/cqrs/eventbus/watermill_adapter.go) but wired to
// the Kafka subscriber instead of an in-process gochannel.
package ingress

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	exerrors "github.com/exchangesim/core/internal/errors"
	"github.com/exchangesim/core/internal/model"
)

// Config configures the Kafka subscriber.
type Config struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// Consumer reads Order messages off the broker and forwards well-formed
// ones to orders. A message that fails to decode is acked (so the broker
// doesn't redeliver it forever) and logged, never retried indefinitely —
// spec.md §4.1's "decode failures: log and drop" policy.
type Consumer struct {
	subscriber message.Subscriber
	topic      string
	logger     *zap.Logger
	orders     chan<- model.Order
}

// New builds a Consumer against a Kafka subscriber.
func New(cfg Config, logger *zap.Logger, orders chan<- model.Order) (*Consumer, error) {
	watermillLogger := watermill.NewStdLoggerWithOut(os.Stdout, false, false)
	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       cfg.Brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: cfg.ConsumerGroup,
		},
		watermillLogger,
	)
	if err != nil {
		return nil, exerrors.Wrap(err, exerrors.Transport, "open kafka subscriber")
	}

	return &Consumer{subscriber: subscriber, topic: cfg.Topic, logger: logger, orders: orders}, nil
}

// Run subscribes to the order topic and blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return exerrors.Wrap(err, exerrors.Transport, "subscribe to order topic")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	var order model.Order
	if err := json.Unmarshal(msg.Payload, &order); err != nil {
		c.logger.Warn("dropping order message, decode failed", zap.Error(err))
		msg.Ack()
		return
	}
	msg.Ack()

	select {
	case c.orders <- order:
	case <-ctx.Done():
	}
}

// Close releases the subscriber's connection.
func (c *Consumer) Close() error {
	return c.subscriber.Close()
}
