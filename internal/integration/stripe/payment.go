package stripe

import (
	"context"

	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
)

// ChargeOffSession выполняет подтвержденное списание с сохраненного
// платежного метода без присутствия клиента.
// Статус возвращается вызывающему как есть: решение о балансовой
// транзакции принимает сервисный слой.
func (g *stripeGateway) ChargeOffSession(ctx context.Context, customerID, paymentMethodID string, amount int64) (*domain.Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currencyUSD),
		Customer:           stripe.String(customerID),
		PaymentMethod:      stripe.String(paymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		OffSession:         stripe.Bool(true),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return nil, g.wrapErr("failed to charge customer", err)
	}

	g.log.Infow("Off-session payment intent created",
		"paymentIntentID", pi.ID,
		"stripeCustomerID", customerID,
		"amount", amount,
		"status", string(pi.Status),
	)
	return &domain.Charge{
		ID:     pi.ID,
		Status: string(pi.Status),
		Amount: pi.Amount,
	}, nil
}
