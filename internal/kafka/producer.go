package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

// Топики событий платформы.
const (
	TopicSubscriptionActivated = "subscription_activated"
	TopicSubscriptionExtended  = "subscription_extended"
	TopicSubscriptionOverride  = "subscription_override"
	TopicVideoPublished        = "video_published"
	TopicVideoDeleted          = "video_deleted"
)

// Producer определяет интерфейс для публикации событий в Kafka.
type Producer interface {
	// PublishSubscriptionEvent отправляет событие, связанное с подпиской.
	// Ключ сообщения — UserID: все события одного пользователя попадают
	// в одну партицию и обрабатываются по порядку.
	PublishSubscriptionEvent(ctx context.Context, topic string, subscription *domain.Subscription) error

	// PublishVideoEvent отправляет событие каталога видео с ключом VideoID.
	PublishVideoEvent(ctx context.Context, topic string, video *domain.Video) error

	// Close закрывает соединение продюсера Kafka.
	Close() error
}

// kafkaProducer реализует интерфейс Producer, используя segmentio/kafka-go.
type kafkaProducer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewKafkaProducer создает и настраивает новый продюсер Kafka.
func NewKafkaProducer(brokers []string, log *logger.Logger) (Producer, error) {
	if len(brokers) == 0 {
		log.Errorw("Kafka brokers list is empty in config, cannot create producer")
		return nil, errors.New("kafka brokers are not configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	log.Infow("Kafka producer initialized", "brokers", brokers)

	return &kafkaProducer{
		writer: writer,
		log:    log,
	}, nil
}

// PublishSubscriptionEvent сериализует подписку и отправляет в топик.
func (k *kafkaProducer) PublishSubscriptionEvent(ctx context.Context, topic string, subscription *domain.Subscription) error {
	return k.publish(ctx, topic, subscription.UserID.String(), subscription)
}

// PublishVideoEvent сериализует видео и отправляет в топик.
func (k *kafkaProducer) PublishVideoEvent(ctx context.Context, topic string, video *domain.Video) error {
	return k.publish(ctx, topic, video.ID.String(), video)
}

func (k *kafkaProducer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	messageValue, err := json.Marshal(payload)
	if err != nil {
		k.log.Errorw("Failed to marshal event payload for Kafka", "error", err, "topic", topic, "key", key)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: messageValue,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err = k.writer.WriteMessages(writeCtx, message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			k.log.Errorw("Kafka write timeout exceeded", "error", err, "topic", topic, "key", key)
			return fmt.Errorf("kafka: write timeout: %w", err)
		}
		k.log.Errorw("Failed to write message to Kafka", "error", err, "topic", topic, "key", key)
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	k.log.Infow("Successfully published message to Kafka", "topic", topic, "key", key)
	return nil
}

// Close закрывает соединение Kafka Writer.
func (k *kafkaProducer) Close() error {
	k.log.Infow("Closing Kafka producer writer...")
	if err := k.writer.Close(); err != nil {
		k.log.Errorw("Failed to close Kafka writer", "error", err)
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}
	k.log.Infow("Kafka producer writer closed successfully")
	return nil
}

// NopProducer реализация Producer без отправки, для тестов и локального запуска без Kafka.
type NopProducer struct{}

func (NopProducer) PublishSubscriptionEvent(ctx context.Context, topic string, subscription *domain.Subscription) error {
	return nil
}

func (NopProducer) PublishVideoEvent(ctx context.Context, topic string, video *domain.Video) error {
	return nil
}

func (NopProducer) Close() error { return nil }
