// Package kafka publishes storefront events to Kafka with a sarama sync producer.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
)

var _ messaging.Publisher = (*Publisher)(nil)

// Publisher sends each event to the topic named by its subject.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewSaramaConfig builds the producer configuration: acks from all in-sync replicas, no producer retries.
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 0
	sc.Producer.Timeout = cfg.Timeout
	sc.Net.DialTimeout = cfg.Timeout
	return sc
}

// NewProducer dials the brokers and returns a ready Publisher.
func NewProducer(cfg config.KafkaConfig) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewPublisher(producer), nil
}

func NewPublisher(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic:     event.Subject(),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}
	if keyed, ok := event.(messaging.Keyed); ok {
		msg.Key = sarama.StringEncoder(keyed.Key())
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
