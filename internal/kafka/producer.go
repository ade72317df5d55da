package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

// Топики событий биллинга.
const (
	TopicBalanceEvents      = "billing_balance_events"
	TopicSubscriptionEvents = "billing_subscription_events"
	TopicProviderEvents     = "billing_provider_events"
)

// Типы событий биллинга.
const (
	EventBalanceCredited             = "balance_credited"
	EventBalanceDebited              = "balance_debited"
	EventTopUpCheckoutCreated        = "topup_checkout_created"
	EventSubscriptionCheckoutCreated = "subscription_checkout_created"
	EventSubscriptionCancelRequested = "subscription_cancel_requested"
)

// Producer определяет интерфейс для публикации событий биллинга в Kafka.
type Producer interface {
	// PublishBillingEvent отправляет событие в указанный топик.
	// Ключ сообщения - ID клиента, чтобы события одного клиента
	// попадали в одну партицию и сохраняли порядок.
	PublishBillingEvent(ctx context.Context, topic string, event *domain.BillingEvent) error
	// Close закрывает соединение продюсера Kafka.
	Close() error
}

// kafkaProducer реализует интерфейс Producer, используя segmentio/kafka-go.
type kafkaProducer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewProducer создает и настраивает новый продюсер Kafka.
// Перед созданием writer-а брокер прощупывается с экспоненциальным backoff:
// при старте в docker-compose Kafka часто поднимается позже сервиса.
func NewProducer(brokers []string, log *logger.Logger) (Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	if err := probeBroker(brokers[0], log); err != nil {
		return nil, fmt.Errorf("kafka: broker is unreachable: %w", err)
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

// probeBroker проверяет доступность брокера с повторными попытками.
func probeBroker(addr string, log *logger.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		conn, err := kafka.Dial("tcp", addr)
		if err != nil {
			log.Warnw("Kafka broker not reachable yet, retrying", "addr", addr, "error", err)
			return err
		}
		return conn.Close()
	}, bo)
}

// PublishBillingEvent преобразует событие в JSON и отправляет в указанный топик Kafka.
func (k *kafkaProducer) PublishBillingEvent(ctx context.Context, topic string, event *domain.BillingEvent) error {
	messageValue, err := json.Marshal(event)
	if err != nil {
		k.log.Errorw("Failed to marshal billing event to JSON for Kafka", "error", err, "type", event.Type, "topic", topic)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(event.CustomerID),
		Value: messageValue,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := k.writer.WriteMessages(writeCtx, message); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			k.log.Errorw("Kafka write timeout exceeded", "error", err, "topic", topic, "type", event.Type)
			return fmt.Errorf("kafka: write timeout: %w", err)
		}
		k.log.Errorw("Failed to write message to Kafka", "error", err, "topic", topic, "type", event.Type)
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	k.log.Infow("Billing event published", "topic", topic, "type", event.Type, "customerID", event.CustomerID)
	return nil
}

// Close закрывает соединение Kafka Writer.
func (k *kafkaProducer) Close() error {
	k.log.Infow("Closing Kafka producer writer...")
	return k.writer.Close()
}
