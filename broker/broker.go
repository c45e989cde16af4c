// Package broker publishes booking lifecycle events.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingDone      = "booking.done"
)

// BookingEvent is the JSON payload of every booking event.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  uint      `json:"booking_id"`
	CustomerID uint      `json:"customer_id"`
	SupplierID uint      `json:"supplier_id"`
	PriceID    uint      `json:"price_id"`
	ToDate     time.Time `json:"to_date"`
	At         time.Time `json:"at"`
}

// Publisher sends booking events somewhere.
type Publisher interface {
	Publish(ctx context.Context, events ...BookingEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to one Kafka topic keyed by booking id, so
// every event of a booking lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates an asynchronous writer for brokers/topic.
// Publish only queues the messages; delivery failures are logged by
// logDelivery and Close flushes what is still queued.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		Completion:             logDelivery(topic),
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, topic: topic}
}

func logDelivery(topic string) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err != nil {
			slog.Warn("booking events not delivered", "topic", topic, "count", len(msgs), "error", err)
		}
	}
}

func encodeEvent(e BookingEvent) (kafka.Message, error) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.BookingID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...BookingEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		m, err := encodeEvent(e)
		if err != nil {
			return fmt.Errorf("broker: encode %s: %w", e.Type, err)
		}
		msgs = append(msgs, m)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("broker: write to %s: %w", p.topic, err)
	}
	slog.DebugContext(ctx, "booking events queued", "topic", p.topic, "count", len(msgs))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...BookingEvent) error { return nil }
func (NopPublisher) Close() error { return nil }

// New returns a Kafka publisher, or a NopPublisher when no brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		slog.Info("KAFKA_BROKERS is not set, booking events are not published")
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// Memory keeps published events in memory. Tests use it in place of Kafka.
type Memory struct {
	mu     sync.Mutex
	events []BookingEvent
}

func (m *Memory) Publish(_ context.Context, events ...BookingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *Memory) Events() []BookingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BookingEvent(nil), m.events...)
}

// OfType filters Events by type.
func (m *Memory) OfType(eventType string) []BookingEvent {
	var out []BookingEvent
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
