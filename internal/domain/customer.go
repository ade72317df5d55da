package domain

// Customer представляет клиента платежного провайдера.
// Провайдер владеет записью и является единственным источником истины;
// мы только читаем и изменяем её через API.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`

	// Balance - баланс клиента в минимальных единицах валюты (центах).
	// Отрицательное значение означает кредит, доступный клиенту.
	Balance int64 `json:"balance"`

	// DefaultPaymentMethod - ID платежного метода по умолчанию (pm_...).
	// Пустая строка, если метод не установлен.
	DefaultPaymentMethod string `json:"default_payment_method,omitempty"`
}

// HasDefaultPaymentMethod сообщает, можно ли списывать средства off-session.
func (c *Customer) HasDefaultPaymentMethod() bool {
	return c.DefaultPaymentMethod != ""
}
