package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/internal/integration/stripe"
	"github.com/Dhoini/storefront-billing/internal/kafka"
	"github.com/Dhoini/storefront-billing/internal/metrics"
	"github.com/Dhoini/storefront-billing/pkg/logger"
)

// Описания балансовых транзакций (попадают в леджер провайдера).
const (
	creditDescription = "Funding customer balance from default payment method"
	debitDescription  = "Debiting customer balance"
)

// BalanceService интерфейс сервиса для работы с балансом клиента.
// Суммы принимаются в долларах, как их вводит пользователь,
// и конвертируются в центы до любого вызова провайдера.
type BalanceService interface {
	// Credit списывает сумму с метода по умолчанию и зачисляет ее на баланс.
	// Балансовая транзакция создается только после успешного списания.
	Credit(ctx context.Context, customerID string, amountInDollars float64) (*domain.BalanceTransaction, error)

	// Debit списывает сумму с баланса клиента.
	// Отклоняется, если после списания баланс стал бы положительным.
	Debit(ctx context.Context, customerID string, amountInDollars float64) (*domain.BalanceTransaction, error)

	// TopUpCheckout создает hosted checkout-сессию ручного пополнения.
	TopUpCheckout(ctx context.Context, customerID string, amountInDollars float64) (*domain.CheckoutSession, error)
}

type balanceService struct {
	gateway  stripe.Gateway
	producer kafka.Producer // Может быть nil, если Kafka недоступен
	metrics  metrics.BillingMetrics
	log      *logger.Logger
}

// NewBalanceService создает новый сервис баланса
func NewBalanceService(gateway stripe.Gateway, producer kafka.Producer, m metrics.BillingMetrics, log *logger.Logger) BalanceService {
	if producer == nil {
		log.Warnw("Kafka producer is nil, balance events will not be published")
	}
	return &balanceService{
		gateway:  gateway,
		producer: producer,
		metrics:  m,
		log:      log,
	}
}

// validateAdjustment проверяет вводы до любого вызова провайдера.
func validateAdjustment(customerID string, amountInDollars float64) error {
	if customerID == "" {
		return fmt.Errorf("%w: customer ID is required", domain.ErrInvalidInput)
	}
	if amountInDollars <= 0 {
		return fmt.Errorf("%w: valid amount is required", domain.ErrInvalidInput)
	}
	return nil
}

func (s *balanceService) Credit(ctx context.Context, customerID string, amountInDollars float64) (*domain.BalanceTransaction, error) {
	if err := validateAdjustment(customerID, amountInDollars); err != nil {
		s.metrics.IncOperation("credit", metrics.OutcomeRejected)
		return nil, err
	}
	amountInCents := domain.DollarsToCents(amountInDollars)

	// Без платежного метода по умолчанию off-session списание невозможно,
	// прерываемся до попытки списания.
	customer, err := s.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		s.metrics.IncOperation("credit", metrics.OutcomeError)
		return nil, err
	}
	if !customer.HasDefaultPaymentMethod() {
		s.log.Warnw("Credit rejected: no default payment method", "customerID", customerID)
		s.metrics.IncOperation("credit", metrics.OutcomeRejected)
		return nil, domain.ErrNoDefaultPaymentMethod
	}

	charge, err := s.gateway.ChargeOffSession(ctx, customerID, customer.DefaultPaymentMethod, amountInCents)
	if err != nil {
		s.metrics.IncOperation("credit", metrics.OutcomeError)
		return nil, err
	}
	if !charge.Succeeded() {
		// Частичного состояния нет: без успешного списания
		// балансовая транзакция не создается.
		s.log.Warnw("Charge did not succeed, balance not credited",
			"customerID", customerID,
			"chargeID", charge.ID,
			"status", charge.Status,
		)
		s.metrics.IncOperation("credit", metrics.OutcomeError)
		return nil, fmt.Errorf("%w: charge status %q", domain.ErrPaymentFailed, charge.Status)
	}

	// Кредит баланса - отрицательная сумма в леджере провайдера
	bt, err := s.gateway.CreateBalanceTransaction(ctx, customerID, -amountInCents, creditDescription)
	if err != nil {
		s.metrics.IncOperation("credit", metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncOperation("credit", metrics.OutcomeOK)
	s.metrics.ObserveAmount("credit", amountInCents)
	s.publishBalanceEvent(ctx, kafka.EventBalanceCredited, customerID, amountInCents)

	return bt, nil
}

func (s *balanceService) Debit(ctx context.Context, customerID string, amountInDollars float64) (*domain.BalanceTransaction, error) {
	if err := validateAdjustment(customerID, amountInDollars); err != nil {
		s.metrics.IncOperation("debit", metrics.OutcomeRejected)
		return nil, err
	}
	amountInCents := domain.DollarsToCents(amountInDollars)

	customer, err := s.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		s.metrics.IncOperation("debit", metrics.OutcomeError)
		return nil, err
	}

	s.log.Debugw("Current balance before debit", "customerID", customerID, "balance", customer.Balance, "amount", amountInCents)

	// Баланс обязан оставаться <= 0: клиент не может уйти в долг.
	if customer.Balance+amountInCents > 0 {
		s.log.Warnw("Debit rejected: insufficient balance",
			"customerID", customerID,
			"balance", customer.Balance,
			"amount", amountInCents,
		)
		s.metrics.IncOperation("debit", metrics.OutcomeRejected)
		return nil, domain.ErrInsufficientBalance
	}

	// Дебет баланса - положительная сумма в леджере провайдера
	bt, err := s.gateway.CreateBalanceTransaction(ctx, customerID, amountInCents, debitDescription)
	if err != nil {
		s.metrics.IncOperation("debit", metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncOperation("debit", metrics.OutcomeOK)
	s.metrics.ObserveAmount("debit", amountInCents)
	s.publishBalanceEvent(ctx, kafka.EventBalanceDebited, customerID, amountInCents)

	return bt, nil
}

func (s *balanceService) TopUpCheckout(ctx context.Context, customerID string, amountInDollars float64) (*domain.CheckoutSession, error) {
	if err := validateAdjustment(customerID, amountInDollars); err != nil {
		s.metrics.IncOperation("topup_checkout", metrics.OutcomeRejected)
		return nil, err
	}
	amountInCents := domain.DollarsToCents(amountInDollars)

	sess, err := s.gateway.CreateTopUpSession(ctx, customerID, amountInCents)
	if err != nil {
		s.metrics.IncOperation("topup_checkout", metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncOperation("topup_checkout", metrics.OutcomeOK)
	s.metrics.ObserveAmount("topup_checkout", amountInCents)
	s.publishBalanceEvent(ctx, kafka.EventTopUpCheckoutCreated, customerID, amountInCents)

	return sess, nil
}

// publishBalanceEvent отправляет событие баланса в Kafka, не блокируя ответ.
func (s *balanceService) publishBalanceEvent(ctx context.Context, eventType, customerID string, amountInCents int64) {
	if s.producer == nil {
		return
	}

	event := &domain.BillingEvent{
		Type:       eventType,
		CustomerID: customerID,
		Amount:     amountInCents,
		Currency:   "usd",
		OccurredAt: time.Now(),
	}

	// Отдельный контекст: ответ клиенту не должен ждать Kafka,
	// а завершение запроса не должно терять событие.
	go func(ctx context.Context) {
		if err := s.producer.PublishBillingEvent(ctx, kafka.TopicBalanceEvents, event); err != nil {
			s.log.Errorw("Failed to publish balance event", "type", eventType, "customerID", customerID, "error", err)
		}
	}(context.WithoutCancel(ctx))
}
