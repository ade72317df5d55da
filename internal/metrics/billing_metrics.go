package metrics

import (
	"github.com/Dhoini/storefront-billing/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы операций для метрик.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// BillingMetrics интерфейс для метрик операций биллинга
type BillingMetrics interface {
	IncOperation(operation, outcome string)
	ObserveAmount(operation string, amountCents int64)
}

type billingMetrics struct {
	log        *logger.Logger
	operations *prometheus.CounterVec
	amounts    *prometheus.HistogramVec
}

// NewBillingMetrics создает новые метрики биллинга
func NewBillingMetrics(registry *prometheus.Registry, log *logger.Logger) BillingMetrics {
	operations := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_operations_total",
			Help: "The total number of billing operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	amounts := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_amount_cents",
			Help:    "Distribution of billing operation amounts in cents",
			Buckets: prometheus.ExponentialBuckets(100, 10, 5), // 100, 1k, 10k, 100k, 1M
		},
		[]string{"operation"},
	)

	return &billingMetrics{
		log:        log,
		operations: operations,
		amounts:    amounts,
	}
}

// IncOperation увеличивает счетчик операций биллинга
func (m *billingMetrics) IncOperation(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveAmount записывает сумму операции
func (m *billingMetrics) ObserveAmount(operation string, amountCents int64) {
	m.amounts.WithLabelValues(operation).Observe(float64(amountCents))
}
