package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTopic receives every storefront event.
const DefaultTopic = "storefront.events"

// Kafka publishes events as JSON with a synchronous producer.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

func NewKafka(brokers []string, topic string, logger zerolog.Logger) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka publisher initialized")
	return NewKafkaWithProducer(producer, topic, logger), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *Kafka {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Kafka{producer: producer, topic: topic, logger: logger}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
			{Key: []byte("event_id"), Value: []byte(e.ID)},
		},
	}
	if e.Key != "" {
		msg.Key = sarama.StringEncoder(e.Key)
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		k.logger.Error().Err(err).Str("topic", k.topic).Str("event_type", e.Type).Msg("failed to publish event")
		return fmt.Errorf("send to kafka: %w", err)
	}
	k.logger.Debug().
		Str("event_id", e.ID).
		Str("event_type", e.Type).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("event published")
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
