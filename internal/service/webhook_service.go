package service

import (
	"context"
	"time"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/internal/kafka"
	"github.com/Dhoini/storefront-billing/internal/repository"
	"github.com/Dhoini/storefront-billing/pkg/logger"
)

// ProviderEvent - верифицированное событие провайдера,
// извлеченное хендлером из тела вебхука.
type ProviderEvent struct {
	ID             string
	Type           string
	CustomerID     string
	SubscriptionID string
}

// WebhookService интерфейс обработки событий провайдера.
// Локальное состояние не изменяется: источником истины для UI
// остается восстановление по редиректу. События дедуплицируются
// и публикуются в Kafka для внешних потребителей.
type WebhookService interface {
	ProcessEvent(ctx context.Context, event ProviderEvent) error
}

type webhookService struct {
	store    repository.EventStore // Может быть nil, если Redis недоступен
	producer kafka.Producer        // Может быть nil, если Kafka недоступен
	log      *logger.Logger
}

// NewWebhookService создает новый сервис обработки вебхуков
func NewWebhookService(store repository.EventStore, producer kafka.Producer, log *logger.Logger) WebhookService {
	if store == nil {
		log.Warnw("Event store is nil, provider events will not be deduplicated")
	}
	if producer == nil {
		log.Warnw("Kafka producer is nil, provider events will not be republished")
	}
	return &webhookService{
		store:    store,
		producer: producer,
		log:      log,
	}
}

func (s *webhookService) ProcessEvent(ctx context.Context, event ProviderEvent) error {
	// Дедупликация best effort: недоступный Redis не повод
	// отбрасывать событие, провайдер и так повторяет доставку.
	if s.store != nil {
		first, err := s.store.MarkProcessed(ctx, event.ID)
		if err != nil {
			s.log.Warnw("Event dedup check failed, processing anyway", "eventID", event.ID, "error", err)
		} else if !first {
			s.log.Infow("Duplicate provider event skipped", "eventID", event.ID, "eventType", event.Type)
			return nil
		}
	}

	s.log.Infow("Processing provider event",
		"eventID", event.ID,
		"eventType", event.Type,
		"customerID", event.CustomerID,
	)

	if s.producer == nil {
		return nil
	}

	billingEvent := &domain.BillingEvent{
		Type:            event.Type,
		CustomerID:      event.CustomerID,
		SubscriptionID:  event.SubscriptionID,
		ProviderEventID: event.ID,
		OccurredAt:      time.Now(),
	}
	if err := s.producer.PublishBillingEvent(ctx, kafka.TopicProviderEvents, billingEvent); err != nil {
		// Снимаем отметку обработки: хендлер ответит 500, провайдер
		// повторит доставку, и она не должна упереться в дедупликацию.
		s.unmark(ctx, event.ID)
		return err
	}
	return nil
}

func (s *webhookService) unmark(ctx context.Context, eventID string) {
	if s.store == nil {
		return
	}
	if err := s.store.Unmark(ctx, eventID); err != nil {
		s.log.Warnw("Failed to unmark provider event, redelivery may be skipped", "eventID", eventID, "error", err)
	}
}
