package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
)

// KafkaPublisher sends alerts as JSON to a Kafka topic, keyed by subject so
// alerts for one wallet or transaction stay on one partition.
type KafkaPublisher struct {
	topic string
	sp    sarama.SyncProducer
}

// NewKafkaPublisher connects a synchronous producer to brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if topic == "" {
		return nil, errors.New("topic empty")
	}
	if len(brokers) == 0 {
		return nil, errors.New("no brokers")
	}

	sp, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(sp, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(sp sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, sp: sp}
}

// ProducerConfig returns the producer settings used for alerts.
func ProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	// SyncProducer requires both.
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

// Publish sends one alert and waits for the broker ack.
func (p *KafkaPublisher) Publish(ctx context.Context, a domain.Alert) (err error) {
	defer func() { observability.RecordAlert(a.Type, err) }()

	// SyncProducer takes no context; honor cancellation before sending.
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(a.Subject),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.sp.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka publish failed: %w", err)
	}
	return nil
}

// Close closes the producer.
func (p *KafkaPublisher) Close() error {
	if p.sp != nil {
		return p.sp.Close()
	}
	return nil
}

var _ Publisher = (*KafkaPublisher)(nil)
