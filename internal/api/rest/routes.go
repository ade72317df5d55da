package rest

import (
	"github.com/Dhoini/storefront-billing/internal/api/rest/handlers"
	"github.com/Dhoini/storefront-billing/internal/api/rest/middleware"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers - набор обработчиков, подключаемых к роутеру.
// WebhookHandler может быть nil, если секрет вебхука не настроен.
type Handlers struct {
	Customer     *handlers.CustomerHandler
	Setup        *handlers.SetupHandler
	Balance      *handlers.BalanceHandler
	Subscription *handlers.SubscriptionHandler
	Session      *handlers.SessionHandler
	Webhook      *handlers.WebhookHandler
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, h Handlers) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		// Клиенты
		v1.POST("/customers", h.Customer.CreateCustomer)

		// Сбор платежного метода
		setup := v1.Group("/setup")
		{
			setup.POST("/session", h.Setup.CreateSession)
			setup.POST("/intent", h.Setup.CreateIntent)
			setup.POST("/portal", h.Setup.CreatePortal)
		}

		// Восстановление состояния из параметров редиректа
		v1.GET("/session/recover", h.Session.Recover)

		// Баланс
		balance := v1.Group("/balance")
		{
			balance.POST("/credit", h.Balance.Credit)
			balance.POST("/debit", h.Balance.Debit)
			balance.POST("/checkout", h.Balance.Checkout)
		}

		// Подписки
		subscriptions := v1.Group("/subscriptions")
		{
			subscriptions.POST("/checkout", h.Subscription.Checkout)
			subscriptions.POST("/cancel", h.Subscription.Cancel)
			subscriptions.POST("/portal", h.Subscription.Portal)
		}
	}

	// Вебхуки на корневом уровне роутера
	if h.Webhook != nil {
		webhooks := r.Group("/webhooks")
		{
			webhooks.POST("/stripe", h.Webhook.HandleStripeWebhook)
		}
	}

	return r
}
