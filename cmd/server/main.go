package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/storefront-billing/internal/api/rest"
	"github.com/Dhoini/storefront-billing/internal/api/rest/handlers"
	"github.com/Dhoini/storefront-billing/internal/config"
	stripegw "github.com/Dhoini/storefront-billing/internal/integration/stripe"
	"github.com/Dhoini/storefront-billing/internal/kafka"
	"github.com/Dhoini/storefront-billing/internal/metrics"
	"github.com/Dhoini/storefront-billing/internal/repository"
	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Инициализируем логгер
	log := logger.New(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	log.Infow("Storefront billing service starting up...")

	// Загружаем конфигурацию; отсутствие ключа Stripe фатально
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warnw("Stripe webhook secret is not set, webhook endpoint will be disabled")
	}

	// Устанавливаем режим Gin в зависимости от окружения
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализируем Redis хранилище событий (не фатально)
	var eventStore repository.EventStore
	if cfg.Redis.Addr != "" {
		redisStore, err := repository.NewRedisEventStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Warnw("Failed to initialize Redis event store, continuing without event dedup", "error", err)
		} else {
			eventStore = redisStore
			defer func() {
				if err := redisStore.Close(); err != nil {
					log.Errorw("Error closing Redis connection", "error", err)
				}
			}()
		}
	}

	// Инициализируем Kafka Producer (не фатально)
	var producer kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, log)
		if err != nil {
			log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		} else {
			producer = kafkaProducer
			defer func() {
				if err := kafkaProducer.Close(); err != nil {
					log.Errorw("Error closing Kafka producer", "error", err)
				}
			}()
		}
	}

	// Инициализируем шлюз Stripe
	gateway, err := stripegw.NewGateway(cfg.Stripe.APIKey, cfg.PublicURL, log)
	if err != nil {
		log.Fatalw("Failed to initialize Stripe gateway", "error", err)
	}

	// Prometheus метрики
	registry := prometheus.NewRegistry()
	billingMetrics := metrics.NewBillingMetrics(registry, log)

	// Инициализируем service layer
	customerService := service.NewCustomerService(gateway, log)
	balanceService := service.NewBalanceService(gateway, producer, billingMetrics, log)
	setupService := service.NewSetupService(gateway, cfg.PublicURL, log)
	subscriptionService := service.NewSubscriptionService(cfg, gateway, customerService, producer, billingMetrics, log)
	webhookService := service.NewWebhookService(eventStore, producer, log)

	// Инициализируем обработчики HTTP
	h := rest.Handlers{
		Customer:     handlers.NewCustomerHandler(customerService, log),
		Setup:        handlers.NewSetupHandler(setupService, log),
		Balance:      handlers.NewBalanceHandler(balanceService, log),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService, log),
		Session:      handlers.NewSessionHandler(setupService, log),
	}
	if cfg.Stripe.WebhookSecret != "" {
		webhookHandler, err := handlers.NewWebhookHandler(webhookService, cfg.Stripe.WebhookSecret, log)
		if err != nil {
			log.Fatalw("Failed to initialize webhook handler", "error", err)
		}
		h.Webhook = webhookHandler
	}

	// Настраиваем маршруты и HTTP сервер
	router := rest.SetupRouter(log, registry, h)
	server := rest.NewServer(router, cfg.App.Port, log)

	// Запускаем HTTP сервер в горутине
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	// Даем 10 секунд на завершение текущих запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}

	log.Infow("Cleanup finished. Goodbye!")
}
