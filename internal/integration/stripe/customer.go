package stripe

import (
	"context"
	"fmt"

	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/stripe/stripe-go/v78"
)

// CreateCustomer создает нового клиента в Stripe.
func (g *stripeGateway) CreateCustomer(ctx context.Context, email, name string) (*domain.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	cus, err := g.client.Customers.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create customer", err)
	}

	g.log.Infow("Stripe customer created", "stripeCustomerID", cus.ID, "email", email)
	return mapCustomer(cus), nil
}

// FindCustomerByEmail ищет клиента по точному совпадению email.
// Берется первый элемент списка; отсутствие совпадений не ошибка.
func (g *stripeGateway) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	listParams := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)

	it := g.client.Customers.List(listParams)
	if it.Next() {
		found := it.Customer()
		g.log.Debugw("Found existing Stripe customer by email", "stripeCustomerID", found.ID, "email", email)
		// Список не возвращает invoice_settings надежно, перечитываем клиента целиком
		return g.GetCustomer(ctx, found.ID)
	}
	if err := it.Err(); err != nil {
		return nil, g.wrapErr("failed to list customers", err)
	}

	g.log.Debugw("No Stripe customer found by email", "email", email)
	return nil, nil
}

// GetCustomer получает клиента из Stripe по ID.
func (g *stripeGateway) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cus, err := g.client.Customers.Get(customerID, params)
	if err != nil {
		return nil, g.wrapErr("failed to retrieve customer", err)
	}
	if cus.Deleted {
		return nil, fmt.Errorf("%w: customer %s has been deleted", domain.ErrCustomerNotFound, customerID)
	}

	return mapCustomer(cus), nil
}

// SetDefaultPaymentMethod устанавливает платежный метод по умолчанию для инвойсов.
func (g *stripeGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := g.client.Customers.Update(customerID, params); err != nil {
		return g.wrapErr("failed to update default payment method", err)
	}

	g.log.Infow("Default payment method updated", "stripeCustomerID", customerID, "paymentMethodID", paymentMethodID)
	return nil
}

// CreateBalanceTransaction создает запись в леджере баланса клиента.
// Отрицательная сумма пополняет кредит, положительная списывает его.
func (g *stripeGateway) CreateBalanceTransaction(ctx context.Context, customerID string, amount int64, description string) (*domain.BalanceTransaction, error) {
	params := &stripe.CustomerBalanceTransactionParams{
		Customer: stripe.String(customerID),
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currencyUSD),
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	params.Context = ctx

	bt, err := g.client.CustomerBalanceTransactions.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create balance transaction", err)
	}

	g.log.Infow("Balance transaction created",
		"stripeCustomerID", customerID,
		"balanceTransactionID", bt.ID,
		"amount", bt.Amount,
		"endingBalance", bt.EndingBalance,
	)
	return mapBalanceTransaction(customerID, bt), nil
}
