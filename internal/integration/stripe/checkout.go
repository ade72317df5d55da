package stripe

import (
	"context"
	"fmt"

	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
)

// Имя позиции в checkout-сессии ручного пополнения баланса.
const topUpProductName = "Credit Balance"

// CreateSetupSession создает hosted-сессию сбора платежного метода.
// Успешный возврат несет session_id, отмена - canceled + customer_id.
func (g *stripeGateway) CreateSetupSession(ctx context.Context, customerID string) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSetup)),
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.publicURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(g.publicURL + "?canceled=true&customer_id=" + customerID),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create setup session", err)
	}

	g.log.Infow("Setup session created", "sessionID", sess.ID, "stripeCustomerID", customerID)
	return mapCheckoutSession(sess), nil
}

// CreateSetupIntent создает setup intent напрямую; подтверждение
// выполняется клиентской библиотекой провайдера по client secret.
func (g *stripeGateway) CreateSetupIntent(ctx context.Context, customerID string) (*domain.SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	si, err := g.client.SetupIntents.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create setup intent", err)
	}

	g.log.Infow("Setup intent created", "setupIntentID", si.ID, "stripeCustomerID", customerID)
	return mapSetupIntent(si), nil
}

// RetrieveSetupIntent получает setup intent и резолвит его в платежный метод.
func (g *stripeGateway) RetrieveSetupIntent(ctx context.Context, setupIntentID string) (*domain.SetupIntent, error) {
	params := &stripe.SetupIntentParams{}
	params.Context = ctx

	si, err := g.client.SetupIntents.Get(setupIntentID, params)
	if err != nil {
		return nil, g.wrapErr("failed to retrieve setup intent", err)
	}

	return mapSetupIntent(si), nil
}

// CreateTopUpSession создает checkout-сессию разового платежа на заданную сумму в центах.
// Платеж обрабатывается целиком на hosted-странице провайдера, отдельная
// балансовая транзакция не нужна.
func (g *stripeGateway) CreateTopUpSession(ctx context.Context, customerID string, amount int64) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currencyUSD),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(topUpProductName),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.publicURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.publicURL + "?canceled=true&customer_id=" + customerID),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create checkout session", err)
	}

	g.log.Infow("Top-up checkout session created", "sessionID", sess.ID, "stripeCustomerID", customerID, "amount", amount)
	return mapCheckoutSession(sess), nil
}

// CreateSubscriptionSession создает checkout-сессию оформления подписки на план.
func (g *stripeGateway) CreateSubscriptionSession(ctx context.Context, customerID, priceID, planType string) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:               stripe.String(g.publicURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:                stripe.String(g.publicURL + "/subscription/" + planType),
		AllowPromotionCodes:      stripe.Bool(false),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		CustomerUpdate: &stripe.CheckoutSessionCustomerUpdateParams{
			Address: stripe.String("auto"),
			Name:    stripe.String("auto"),
		},
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create checkout session", err)
	}

	g.log.Infow("Subscription checkout session created",
		"sessionID", sess.ID,
		"stripeCustomerID", customerID,
		"priceID", priceID,
	)
	return mapCheckoutSession(sess), nil
}

// RetrieveCheckoutSession получает сессию по ID, возвращенному редиректом.
func (g *stripeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, g.wrapErr("failed to retrieve session", err)
	}

	return mapCheckoutSession(sess), nil
}

// CreatePortalSession создает сессию billing portal для самообслуживания.
func (g *stripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*domain.PortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	ps, err := g.client.BillingPortalSessions.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to create customer portal session", err)
	}
	if ps.URL == "" {
		return nil, fmt.Errorf("stripe: billing portal session %s has no URL", ps.ID)
	}

	g.log.Infow("Billing portal session created", "stripeCustomerID", customerID)
	return &domain.PortalSession{URL: ps.URL}, nil
}
