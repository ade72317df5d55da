package domain

import (
	"math"
	"time"
)

// DollarsToCents переводит сумму в долларах в центы,
// округляя до ближайшего цента (19.999 -> 2000).
// Все денежные вводы из UI проходят через эту функцию до любого вызова провайдера.
func DollarsToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ChargeStatusSucceeded - статус успешного списания у провайдера.
// Балансовая транзакция создается только при этом статусе.
const ChargeStatusSucceeded = "succeeded"

// Charge - результат попытки off-session списания.
type Charge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Succeeded сообщает, прошло ли списание.
func (c *Charge) Succeeded() bool {
	return c.Status == ChargeStatusSucceeded
}

// BalanceTransaction - неизменяемая запись в леджере баланса клиента.
// Отрицательная сумма пополняет кредит клиента, положительная - списывает его.
type BalanceTransaction struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description,omitempty"`
	EndingBalance int64  `json:"ending_balance"`
}

// CheckoutSession - короткоживущая hosted-сессия провайдера
// (setup, разовый платеж или оформление подписки).
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	CustomerID    string `json:"customer_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`

	// SetupIntentID заполнен только у сессий setup-режима.
	SetupIntentID string `json:"setup_intent_id,omitempty"`
}

// SetupIntent - намерение провайдера собрать платежный метод без списания.
type SetupIntent struct {
	ID              string `json:"id"`
	ClientSecret    string `json:"client_secret,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

// PortalSession - hosted-страница самообслуживания (billing portal).
type PortalSession struct {
	URL string `json:"url"`
}

// BillingEvent - событие биллинга, публикуемое в Kafka.
type BillingEvent struct {
	Type            string    `json:"type"`
	CustomerID      string    `json:"customer_id,omitempty"`
	SubscriptionID  string    `json:"subscription_id,omitempty"`
	Amount          int64     `json:"amount,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	ProviderEventID string    `json:"provider_event_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
