package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/infra"
)

// eventConsumer is satisfied by both the Kafka and the AMQP consumer.
type eventConsumer interface {
	Consume(ctx context.Context, handle func(context.Context, infra.Message) error) error
	Close() error
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	consumer, err := newConsumer(cfg, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	logger.Info("notifier starting", "event_broker", cfg.EventBroker)
	n := &notifier{logger: logger}
	if err := consumer.Consume(ctx, n.handle); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume: %w", err)
	}
	logger.Info("notifier shutting down")
	return nil
}

func newConsumer(cfg *infra.Config, logger *slog.Logger) (eventConsumer, error) {
	switch cfg.EventBroker {
	case infra.BrokerKafka:
		return infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger), nil
	case infra.BrokerAMQP:
		keys := []string{
			string(domain.EventBookingCreated),
			string(domain.EventBookingStatusChanged),
			string(domain.EventBookingDeleted),
		}
		c, err := infra.NewAMQPConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, keys, logger)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("notifier needs EVENT_BROKER=kafka or amqp, got %q", cfg.EventBroker)
	}
}

type notifier struct {
	logger *slog.Logger
}

// handle turns booking events into notification lines. Malformed messages
// are logged and acknowledged so they do not block the stream.
func (n *notifier) handle(_ context.Context, msg infra.Message) error {
	event, err := infra.DecodeEvent(msg)
	if err != nil {
		n.logger.Warn("dropping undecodable event", "error", err, "event_id", msg.ID)
		return nil
	}

	switch event.EventType {
	case domain.EventBookingCreated:
		var b domain.Booking
		if err := json.Unmarshal(event.Payload, &b); err != nil {
			n.logger.Warn("bad booking.created payload", "error", err, "event_id", event.EventID)
			return nil
		}
		n.logger.Info("notification",
			"user_id", b.UserID,
			"text", fmt.Sprintf("Your booking for %s at %s is pending approval.", b.BookingDate, b.TimeSlot),
			"booking_id", b.ID,
		)
	case domain.EventBookingStatusChanged:
		var p domain.BookingStatusChangedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			n.logger.Warn("bad booking.status_changed payload", "error", err, "event_id", event.EventID)
			return nil
		}
		n.logger.Info("notification",
			"user_id", p.UserID,
			"text", statusText(p),
			"booking_id", p.BookingID,
		)
	default:
		n.logger.Debug("ignoring event", "event_type", event.EventType, "event_id", event.EventID)
	}
	return nil
}

func statusText(p domain.BookingStatusChangedPayload) string {
	switch p.To {
	case domain.StatusConfirmed:
		if p.Cost != nil {
			return fmt.Sprintf("Your booking is confirmed. Amount due: %d.", *p.Cost)
		}
		return "Your booking is confirmed."
	case domain.StatusCanceled:
		return "Your booking was canceled."
	case domain.StatusNoShow:
		return "Your booking was marked as a no-show."
	default:
		return fmt.Sprintf("Your booking moved from %s to %s.", p.From, p.To)
	}
}
