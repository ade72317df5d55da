package stripe

import (
	"context"

	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/stripe/stripe-go/v78"
)

// ListSubscriptions возвращает все подписки клиента во всех статусах.
func (g *stripeGateway) ListSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	var subs []domain.Subscription
	it := g.client.Subscriptions.List(params)
	for it.Next() {
		subs = append(subs, *mapSubscription(it.Subscription()))
	}
	if err := it.Err(); err != nil {
		return nil, g.wrapErr("failed to list subscriptions", err)
	}

	g.log.Debugw("Listed Stripe subscriptions", "stripeCustomerID", customerID, "count", len(subs))
	return subs, nil
}

// CancelAtPeriodEnd помечает подписку на отмену в конце оплаченного периода.
// Подписка остается действующей до конца периода, провайдер завершает ее сам.
func (g *stripeGateway) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	sub, err := g.client.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, g.wrapErr("failed to cancel subscription", err)
	}

	g.log.Infow("Subscription marked for cancellation at period end",
		"stripeSubscriptionID", sub.ID,
		"status", string(sub.Status),
		"currentPeriodEnd", sub.CurrentPeriodEnd,
	)
	return mapSubscription(sub), nil
}
