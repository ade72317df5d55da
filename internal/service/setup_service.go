package service

import (
	"context"
	"fmt"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/internal/integration/stripe"
	"github.com/Dhoini/storefront-billing/pkg/logger"
)

// RecoveredState - состояние страницы, восстановленное из параметров редиректа.
type RecoveredState struct {
	CustomerID     string `json:"customer_id"`
	SetupCompleted bool   `json:"setup_completed"`
}

// SetupService интерфейс сервиса сбора платежных методов.
type SetupService interface {
	// StartHostedSetup создает hosted-сессию сбора платежного метода
	// и возвращает URL для редиректа.
	StartHostedSetup(ctx context.Context, customerID string) (*domain.CheckoutSession, error)

	// StartEmbeddedSetup создает setup intent и возвращает client secret
	// для подтверждения клиентской библиотекой провайдера.
	StartEmbeddedSetup(ctx context.Context, customerID string) (*domain.SetupIntent, error)

	// ManagePaymentMethods открывает billing portal для управления методами оплаты.
	ManagePaymentMethods(ctx context.Context, customerID string) (*domain.PortalSession, error)

	// Recover восстанавливает состояние из параметров редиректа.
	// При наличии session_id завершает setup-цепочку; повторная загрузка
	// того же URL не создает побочных эффектов сверх дедупликации провайдера.
	Recover(ctx context.Context, sessionID, customerID string) (*RecoveredState, error)
}

type setupService struct {
	gateway   stripe.Gateway
	publicURL string
	log       *logger.Logger
}

// NewSetupService создает новый сервис сбора платежных методов
func NewSetupService(gateway stripe.Gateway, publicURL string, log *logger.Logger) SetupService {
	return &setupService{
		gateway:   gateway,
		publicURL: publicURL,
		log:       log,
	}
}

func (s *setupService) StartHostedSetup(ctx context.Context, customerID string) (*domain.CheckoutSession, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer ID is required", domain.ErrInvalidInput)
	}
	return s.gateway.CreateSetupSession(ctx, customerID)
}

func (s *setupService) StartEmbeddedSetup(ctx context.Context, customerID string) (*domain.SetupIntent, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer ID is required", domain.ErrInvalidInput)
	}
	return s.gateway.CreateSetupIntent(ctx, customerID)
}

func (s *setupService) ManagePaymentMethods(ctx context.Context, customerID string) (*domain.PortalSession, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer ID is required", domain.ErrInvalidInput)
	}
	returnURL := s.publicURL + "?customer_id=" + customerID
	return s.gateway.CreatePortalSession(ctx, customerID, returnURL)
}

func (s *setupService) Recover(ctx context.Context, sessionID, customerID string) (*RecoveredState, error) {
	// Только customer_id: принимаем его как есть, провайдер не вызывается
	if sessionID == "" {
		if customerID == "" {
			return nil, fmt.Errorf("%w: session_id or customer_id is required", domain.ErrInvalidInput)
		}
		s.log.Debugw("Adopting customer from redirect", "customerID", customerID)
		return &RecoveredState{CustomerID: customerID}, nil
	}

	sess, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state := &RecoveredState{CustomerID: sess.CustomerID}

	// Не setup-сессия (например, завершенное пополнение): клиента достаточно
	if sess.SetupIntentID == "" {
		return state, nil
	}

	// Сессия без клиента: платежный метод некому назначить
	if sess.CustomerID == "" {
		s.log.Warnw("Setup session has no customer, skipping completion", "sessionID", sessionID)
		return state, nil
	}

	// Трехшаговая цепочка завершения setup: сессия -> setup intent ->
	// платежный метод -> метод по умолчанию. Без последнего шага клиент
	// останется непригодным для off-session списаний.
	intent, err := s.gateway.RetrieveSetupIntent(ctx, sess.SetupIntentID)
	if err != nil {
		return nil, err
	}
	if intent.PaymentMethodID == "" {
		s.log.Warnw("Setup intent has no payment method yet", "sessionID", sessionID, "setupIntentID", intent.ID)
		return state, nil
	}

	if err := s.gateway.SetDefaultPaymentMethod(ctx, sess.CustomerID, intent.PaymentMethodID); err != nil {
		return nil, err
	}

	s.log.Infow("Payment method setup completed",
		"customerID", sess.CustomerID,
		"setupIntentID", intent.ID,
		"paymentMethodID", intent.PaymentMethodID,
	)
	state.SetupCompleted = true
	return state, nil
}
