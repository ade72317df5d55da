package stripe

import (
	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/stripe/stripe-go/v78"
)

// mapCustomer преобразует клиента Stripe в доменную модель.
func mapCustomer(cus *stripe.Customer) *domain.Customer {
	c := &domain.Customer{
		ID:      cus.ID,
		Email:   cus.Email,
		Name:    cus.Name,
		Balance: cus.Balance,
	}
	if cus.InvoiceSettings != nil && cus.InvoiceSettings.DefaultPaymentMethod != nil {
		c.DefaultPaymentMethod = cus.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return c
}

// mapCheckoutSession преобразует checkout-сессию Stripe в доменную модель.
// Вложенные объекты приходят развернутыми только до ID, этого достаточно:
// остальное дочитывается отдельными запросами.
func mapCheckoutSession(sess *stripe.CheckoutSession) *domain.CheckoutSession {
	s := &domain.CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}
	if sess.Customer != nil {
		s.CustomerID = sess.Customer.ID
	}
	if sess.CustomerDetails != nil {
		s.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.SetupIntent != nil {
		s.SetupIntentID = sess.SetupIntent.ID
	}
	return s
}

// mapSetupIntent преобразует setup intent Stripe в доменную модель.
func mapSetupIntent(si *stripe.SetupIntent) *domain.SetupIntent {
	d := &domain.SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
	}
	if si.PaymentMethod != nil {
		d.PaymentMethodID = si.PaymentMethod.ID
	}
	return d
}

// mapSubscription преобразует подписку Stripe в доменную модель.
func mapSubscription(sub *stripe.Subscription) *domain.Subscription {
	d := &domain.Subscription{
		ID:                sub.ID,
		Status:            domain.SubscriptionStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
	}
	if sub.Customer != nil {
		d.CustomerID = sub.Customer.ID
	}
	return d
}

// mapBalanceTransaction преобразует запись леджера Stripe в доменную модель.
func mapBalanceTransaction(customerID string, bt *stripe.CustomerBalanceTransaction) *domain.BalanceTransaction {
	return &domain.BalanceTransaction{
		ID:            bt.ID,
		CustomerID:    customerID,
		Amount:        bt.Amount,
		Currency:      string(bt.Currency),
		Description:   bt.Description,
		EndingBalance: bt.EndingBalance,
	}
}
