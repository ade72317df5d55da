package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/internal/integration/stripe"
	"github.com/Dhoini/storefront-billing/pkg/logger"
)

// CustomerService интерфейс сервиса для работы с клиентами
type CustomerService interface {
	// GetOrCreate возвращает существующего клиента по email или создает нового.
	// Повторный вызов с тем же email возвращает того же клиента.
	GetOrCreate(ctx context.Context, email, name string) (*domain.Customer, error)

	// Get возвращает клиента по его ID у провайдера.
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
}

type customerService struct {
	gateway stripe.Gateway
	log     *logger.Logger
}

// NewCustomerService создает новый сервис для работы с клиентами
func NewCustomerService(gateway stripe.Gateway, log *logger.Logger) CustomerService {
	return &customerService{
		gateway: gateway,
		log:     log,
	}
}

func (s *customerService) GetOrCreate(ctx context.Context, email, name string) (*domain.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	// Ищем по точному совпадению email, берем первого из списка
	existing, err := s.gateway.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Debugw("Reusing existing customer", "customerID", existing.ID, "email", email)
		return existing, nil
	}

	created, err := s.gateway.CreateCustomer(ctx, email, name)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Customer created", "customerID", created.ID, "email", email)
	return created, nil
}

func (s *customerService) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer ID is required", domain.ErrInvalidInput)
	}
	return s.gateway.GetCustomer(ctx, customerID)
}
