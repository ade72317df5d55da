package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-billing/internal/config"
	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/internal/integration/stripe"
	"github.com/Dhoini/storefront-billing/internal/kafka"
	"github.com/Dhoini/storefront-billing/internal/metrics"
	"github.com/Dhoini/storefront-billing/pkg/logger"
)

// SubscriptionService интерфейс сервиса жизненного цикла подписок.
type SubscriptionService interface {
	// Checkout находит или создает клиента по email и создает
	// checkout-сессию оформления подписки на план.
	Checkout(ctx context.Context, email, planType, interval string) (*domain.CheckoutSession, error)

	// Cancel отменяет подписку клиента в конце периода.
	// Клиент восстанавливается по email из завершенной checkout-сессии.
	Cancel(ctx context.Context, sessionID string) (*domain.CancellationResult, error)

	// Portal открывает billing portal для клиента из завершенной checkout-сессии.
	Portal(ctx context.Context, sessionID string) (*domain.PortalSession, error)
}

type subscriptionService struct {
	cfg       *config.Config
	gateway   stripe.Gateway
	customers CustomerService
	producer  kafka.Producer // Может быть nil, если Kafka недоступен
	metrics   metrics.BillingMetrics
	log       *logger.Logger
}

// NewSubscriptionService создает новый сервис подписок
func NewSubscriptionService(
	cfg *config.Config,
	gateway stripe.Gateway,
	customers CustomerService,
	producer kafka.Producer,
	m metrics.BillingMetrics,
	log *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		cfg:       cfg,
		gateway:   gateway,
		customers: customers,
		producer:  producer,
		metrics:   m,
		log:       log,
	}
}

func (s *subscriptionService) Checkout(ctx context.Context, email, planType, interval string) (*domain.CheckoutSession, error) {
	priceID, err := s.cfg.ResolvePrice(planType, interval)
	if err != nil {
		s.metrics.IncOperation("subscription_checkout", metrics.OutcomeRejected)
		return nil, err
	}

	customer, err := s.customers.GetOrCreate(ctx, email, "")
	if err != nil {
		s.metrics.IncOperation("subscription_checkout", metrics.OutcomeError)
		return nil, err
	}

	sess, err := s.gateway.CreateSubscriptionSession(ctx, customer.ID, priceID, planType)
	if err != nil {
		s.metrics.IncOperation("subscription_checkout", metrics.OutcomeError)
		return nil, err
	}

	s.log.Infow("Subscription checkout started",
		"customerID", customer.ID,
		"plan", planType,
		"interval", interval,
		"sessionID", sess.ID,
	)
	s.metrics.IncOperation("subscription_checkout", metrics.OutcomeOK)
	s.publishSubscriptionEvent(ctx, kafka.EventSubscriptionCheckoutCreated, customer.ID, "")

	return sess, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, sessionID string) (*domain.CancellationResult, error) {
	customer, err := s.resolveCustomerFromSession(ctx, sessionID)
	if err != nil {
		s.metrics.IncOperation("subscription_cancel", metrics.OutcomeError)
		return nil, err
	}

	subs, err := s.gateway.ListSubscriptions(ctx, customer.ID)
	if err != nil {
		s.metrics.IncOperation("subscription_cancel", metrics.OutcomeError)
		return nil, err
	}

	var active []domain.Subscription
	for _, sub := range subs {
		if sub.IsActive() {
			active = append(active, sub)
		}
	}
	if len(active) == 0 {
		s.metrics.IncOperation("subscription_cancel", metrics.OutcomeRejected)
		return nil, domain.ErrNoActiveSubscription
	}
	// Витрина считает, что действующая подписка у клиента одна;
	// провайдер этого не гарантирует, лишние отмечаем в логе.
	if len(active) > 1 {
		s.log.Warnw("Customer has multiple active subscriptions, cancelling the first",
			"customerID", customer.ID,
			"count", len(active),
		)
	}

	updated, err := s.gateway.CancelAtPeriodEnd(ctx, active[0].ID)
	if err != nil {
		s.metrics.IncOperation("subscription_cancel", metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncOperation("subscription_cancel", metrics.OutcomeOK)
	s.publishSubscriptionEvent(ctx, kafka.EventSubscriptionCancelRequested, customer.ID, updated.ID)

	return &domain.CancellationResult{
		SubscriptionID:    updated.ID,
		Status:            updated.Status,
		CancelAtPeriodEnd: updated.CancelAtPeriodEnd,
		CurrentPeriodEnd:  updated.CurrentPeriodEnd,
	}, nil
}

func (s *subscriptionService) Portal(ctx context.Context, sessionID string) (*domain.PortalSession, error) {
	customer, err := s.resolveCustomerFromSession(ctx, sessionID)
	if err != nil {
		s.metrics.IncOperation("subscription_portal", metrics.OutcomeError)
		return nil, err
	}

	returnURL := s.cfg.PublicURL + "/subscription/success?session_id=" + sessionID
	ps, err := s.gateway.CreatePortalSession(ctx, customer.ID, returnURL)
	if err != nil {
		s.metrics.IncOperation("subscription_portal", metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncOperation("subscription_portal", metrics.OutcomeOK)
	return ps, nil
}

// resolveCustomerFromSession восстанавливает клиента по email
// из завершенной checkout-сессии.
func (s *subscriptionService) resolveCustomerFromSession(ctx context.Context, sessionID string) (*domain.Customer, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session ID is required", domain.ErrInvalidInput)
	}

	sess, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.CustomerEmail == "" {
		return nil, fmt.Errorf("%w: email not found in session", domain.ErrInvalidInput)
	}

	customer, err := s.gateway.FindCustomerByEmail(ctx, sess.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// publishSubscriptionEvent отправляет событие подписки в Kafka, не блокируя ответ.
func (s *subscriptionService) publishSubscriptionEvent(ctx context.Context, eventType, customerID, subscriptionID string) {
	if s.producer == nil {
		return
	}

	event := &domain.BillingEvent{
		Type:           eventType,
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		OccurredAt:     time.Now(),
	}

	go func(ctx context.Context) {
		if err := s.producer.PublishBillingEvent(ctx, kafka.TopicSubscriptionEvents, event); err != nil {
			s.log.Errorw("Failed to publish subscription event", "type", eventType, "customerID", customerID, "error", err)
		}
	}(context.WithoutCancel(ctx))
}
