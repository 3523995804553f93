package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageReader is the slice of kafka.Reader the consume loops need.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads one topic within a consumer group and hands decoded events
// to a typed handler. A payload that does not decode is logged and skipped:
// one malformed message must not wedge the partition.
type Consumer struct {
	reader messageReader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeSupplierResponses blocks delivering supplier callback events until
// the reader fails or the handler returns an error.
func (c *Consumer) ConsumeSupplierResponses(ctx context.Context, handler func(context.Context, SupplierResponseEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event SupplierResponseEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("skip malformed supplier response",
				zap.String("topic", msg.Topic), zap.Error(err))
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

// ConsumeStatusEvents blocks delivering booking status events until the
// reader fails or the handler returns an error.
func (c *Consumer) ConsumeStatusEvents(ctx context.Context, handler func(context.Context, BookingStatusEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event BookingStatusEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("skip malformed booking status event",
				zap.String("topic", msg.Topic), zap.Error(err))
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
