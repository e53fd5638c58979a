package infra

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is one event handed to a broker.
type Message struct {
	// Type is the event type; used as the AMQP routing key and a Kafka header.
	Type string
	// Key orders messages: Kafka partition key, AMQP correlation id.
	Key   []byte
	Value []byte
	ID    string
}

// EventPublisher delivers outbox events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// NewEventPublisher builds the publisher selected by EVENT_BROKER.
// BrokerNone yields a disabled Kafka producer whose writes are no-ops.
func NewEventPublisher(cfg *Config, logger *slog.Logger) (EventPublisher, error) {
	switch cfg.EventBroker {
	case BrokerKafka:
		return NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, true, logger), nil
	case BrokerAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	case BrokerNone, "":
		return NewKafkaProducer("", "", false, logger), nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}
