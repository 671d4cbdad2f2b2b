package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer is the subset of *kafka.Writer the forwarder needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder republishes dispatched events to a Kafka topic, keyed by
// report id so one report's events stay ordered within a partition.
type KafkaForwarder struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaForwarder dials nothing up front; kafka-go connects lazily.
func NewKafkaForwarder(brokers []string, topic string, logger *zap.Logger) *KafkaForwarder {
	return NewKafkaForwarderWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}, logger)
}

// NewKafkaForwarderWithWriter wraps an existing writer.
func NewKafkaForwarderWithWriter(w Writer, logger *zap.Logger) *KafkaForwarder {
	return &KafkaForwarder{writer: w, logger: logger}
}

// Handle is an EventHandler that writes the event as JSON.
func (f *KafkaForwarder) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ReportID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		f.logger.Warn("kafka publish failed", zap.String("event_id", event.ID), zap.Error(err))
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	f.logger.Debug("kafka published", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	return nil
}

// Register subscribes the forwarder to every event type.
func (f *KafkaForwarder) Register(d Dispatcher) {
	for _, t := range AllTypes {
		d.Subscribe(t, f.Handle)
	}
}

// Close flushes and closes the writer.
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
