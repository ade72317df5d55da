package domain

import "errors"

// Application errors
var (
	// ErrInvalidInput неверные входные данные (отклоняется до вызова провайдера)
	ErrInvalidInput = errors.New("invalid input data")

	// ErrCustomerNotFound клиент не найден у провайдера
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoDefaultPaymentMethod у клиента нет платежного метода по умолчанию
	ErrNoDefaultPaymentMethod = errors.New("customer does not have a default payment method set")

	// ErrInsufficientBalance списание увело бы баланс клиента в плюс
	ErrInsufficientBalance = errors.New("insufficient balance to cover the transaction")

	// ErrPaymentFailed списание не прошло, балансовая транзакция не создана
	ErrPaymentFailed = errors.New("payment failed")

	// ErrNoActiveSubscription у клиента нет подписки в статусе active/trialing
	ErrNoActiveSubscription = errors.New("no active subscription found for customer")

	// ErrInvalidPlan неизвестный тарифный план
	ErrInvalidPlan = errors.New("invalid plan type")

	// ErrProviderUnavailable провайдер недоступен или вернул неопознанную ошибку
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
