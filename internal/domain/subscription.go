package domain

// SubscriptionStatus - статус подписки у провайдера.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription представляет подписку клиента у провайдера.
type Subscription struct {
	ID                string             `json:"id"`
	CustomerID        string             `json:"customer_id"`
	Status            SubscriptionStatus `json:"status"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64              `json:"current_period_end"` // Unix time
}

// IsActive сообщает, считается ли подписка действующей.
// Действующими считаются статусы active и trialing.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}

// CancellationResult - итог запроса на отмену подписки в конце периода.
type CancellationResult struct {
	SubscriptionID    string             `json:"subscription_id"`
	Status            SubscriptionStatus `json:"status"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64              `json:"current_period_end"`
}
