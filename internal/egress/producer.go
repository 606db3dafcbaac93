// Package egress consumes the stock channel fed by the market data
// generator and publishes each Stock to the price topic (spec.md §4.4),
// following the same watermill/Kafka wiring as internal/ingress.
package egress

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"

	exerrors "github.com/exchangesim/core/internal/errors"
	"github.com/exchangesim/core/internal/model"
)

// Config configures the Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string
}

// Producer publishes Stock updates read from a channel to the price topic.
// A publish failure is logged and dropped, never retried: the next price
// update for the same symbol supersedes it, so at-most-once delivery is
// acceptable on egress (spec.md §4.4).
type Producer struct {
	publisher message.Publisher
	topic     string
	logger    *zap.Logger
	stocks    <-chan model.Stock
}

// New builds a Producer against a Kafka publisher.
func New(cfg Config, logger *zap.Logger, stocks <-chan model.Stock) (*Producer, error) {
	watermillLogger := watermill.NewStdLoggerWithOut(os.Stdout, false, false)
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermillLogger,
	)
	if err != nil {
		return nil, exerrors.Wrap(err, exerrors.Transport, "open kafka publisher")
	}

	return &Producer{publisher: publisher, topic: cfg.Topic, logger: logger, stocks: stocks}, nil
}

// Run reads from the stock channel and publishes until ctx is cancelled or
// the channel is closed.
func (p *Producer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case stock, ok := <-p.stocks:
			if !ok {
				return
			}
			p.publish(stock)
		}
	}
}

func (p *Producer) publish(stock model.Stock) {
	payload, err := json.Marshal(stock)
	if err != nil {
		p.logger.Error("failed to encode stock update", zap.String("symbol", stock.Symbol), zap.Error(err))
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("symbol", stock.Symbol)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Warn("dropped stock publish", zap.String("symbol", stock.Symbol), zap.Error(err))
	}
}

// Close releases the publisher's connection.
func (p *Producer) Close() error {
	return p.publisher.Close()
}
