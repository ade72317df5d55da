package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// Валюта всех операций витрины.
const currencyUSD = string(stripe.CurrencyUSD)

// Gateway определяет методы для взаимодействия со Stripe API.
// Сервисный слой зависит только от этого интерфейса.
type Gateway interface {
	// CreateCustomer создает нового клиента в Stripe.
	CreateCustomer(ctx context.Context, email, name string) (*domain.Customer, error)

	// FindCustomerByEmail ищет клиента по точному совпадению email.
	// Возвращает (nil, nil), если клиент не найден.
	FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// GetCustomer получает клиента по его Stripe ID.
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)

	// SetDefaultPaymentMethod устанавливает платежный метод по умолчанию.
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	// CreateBalanceTransaction создает запись в леджере баланса клиента.
	CreateBalanceTransaction(ctx context.Context, customerID string, amount int64, description string) (*domain.BalanceTransaction, error)

	// CreateSetupSession создает hosted-сессию сбора платежного метода.
	CreateSetupSession(ctx context.Context, customerID string) (*domain.CheckoutSession, error)

	// CreateSetupIntent создает setup intent для embedded-подтверждения на клиенте.
	CreateSetupIntent(ctx context.Context, customerID string) (*domain.SetupIntent, error)

	// RetrieveSetupIntent получает setup intent и привязанный платежный метод.
	RetrieveSetupIntent(ctx context.Context, setupIntentID string) (*domain.SetupIntent, error)

	// CreateTopUpSession создает checkout-сессию разового платежа на заданную сумму.
	CreateTopUpSession(ctx context.Context, customerID string, amount int64) (*domain.CheckoutSession, error)

	// CreateSubscriptionSession создает checkout-сессию оформления подписки.
	CreateSubscriptionSession(ctx context.Context, customerID, priceID, planType string) (*domain.CheckoutSession, error)

	// RetrieveCheckoutSession получает завершенную или брошенную сессию по ID.
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)

	// ChargeOffSession выполняет подтвержденное списание без присутствия клиента.
	ChargeOffSession(ctx context.Context, customerID, paymentMethodID string, amount int64) (*domain.Charge, error)

	// CreatePortalSession создает сессию billing portal с заданным return URL.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*domain.PortalSession, error)

	// ListSubscriptions возвращает все подписки клиента (во всех статусах).
	ListSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error)

	// CancelAtPeriodEnd помечает подписку на отмену в конце оплаченного периода.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
}

// stripeGateway реализует интерфейс Gateway поверх Stripe SDK.
type stripeGateway struct {
	client    *client.API
	publicURL string
	log       *logger.Logger
}

// NewGateway создает новый экземпляр шлюза Stripe.
// Секретный ключ обязателен: без него конструктор возвращает ошибку.
func NewGateway(apiKey, publicURL string, log *logger.Logger) (Gateway, error) {
	if apiKey == "" {
		return nil, errors.New("stripe: api key is required")
	}

	sc := &client.API{}
	sc.Init(apiKey, nil)

	return &stripeGateway{
		client:    sc,
		publicURL: publicURL,
		log:       log,
	}, nil
}

// logStripeError - вспомогательная функция для логирования деталей ошибки Stripe.
func logStripeError(log *logger.Logger, operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		log.Errorw("Stripe API error",
			"operation", operation,
			"type", string(stripeErr.Type),
			"code", string(stripeErr.Code),
			"param", stripeErr.Param,
			"message", stripeErr.Msg,
			"request_id", stripeErr.RequestID,
			"status_code", stripeErr.HTTPStatusCode,
		)
	} else {
		log.Errorw("Non-Stripe error during Stripe operation",
			"operation", operation,
			"error", err,
		)
	}
}

// wrapErr логирует и оборачивает ошибку провайдера, сохраняя *stripe.Error в цепочке.
// Ошибки вне API провайдера (сеть, таймаут) помечаются как ErrProviderUnavailable.
func (g *stripeGateway) wrapErr(operation string, err error) error {
	logStripeError(g.log, operation, err)

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, operation, err)
	}
	return fmt.Errorf("stripe: %s: %w", operation, err)
}
