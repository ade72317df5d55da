package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"
	"github.com/Dhoini/storefront-billing/pkg/res"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Ограничение на размер тела запроса вебхука (Stripe рекомендует ~65kb)
const maxRequestBodySize = int64(65536)

// WebhookHandler обрабатывает входящие вебхуки от Stripe.
type WebhookHandler struct {
	service       service.WebhookService
	log           *logger.Logger
	webhookSecret string // Секретный ключ для проверки подписи вебхука (whsec_...)
}

// NewWebhookHandler создает новый экземпляр WebhookHandler.
func NewWebhookHandler(svc service.WebhookService, webhookSecret string, log *logger.Logger) (*WebhookHandler, error) {
	if webhookSecret == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	return &WebhookHandler{
		service:       svc,
		log:           log,
		webhookSecret: webhookSecret,
	}, nil
}

// HandleStripeWebhook - обработчик для Gin, принимающий вебхуки Stripe.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	// Читаем тело один раз, с ограничением размера
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Errorw("Failed to read webhook request body", "error", err)
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Cannot read request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		h.log.Warnw("Missing Stripe-Signature header")
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	// Верификация подписи и парсинг события. Версию API события не
	// сверяем с версией SDK: аккаунт может быть закреплен на другой
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.log.Errorw("Webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Webhook signature verification failed"})
		return
	}

	h.log.Infow("Received verified Stripe event", "eventID", event.ID, "eventType", event.Type)

	providerEvent := service.ProviderEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}
	extractEventRefs(h.log, event.Data.Raw, &providerEvent)

	if err := h.service.ProcessEvent(ctx, providerEvent); err != nil {
		h.log.Errorw("Failed to process provider event", "eventID", event.ID, "error", err)
		// 500 заставит провайдера повторить доставку позже
		c.JSON(http.StatusInternalServerError, res.ErrorResponse{Error: "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// extractEventRefs извлекает ID клиента и подписки из сырых данных события.
// Для invoice.* подписка лежит в поле "subscription", для
// customer.subscription.* - в "id" самого объекта.
func extractEventRefs(log *logger.Logger, raw json.RawMessage, out *service.ProviderEvent) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Warnw("Failed to unmarshal event data", "eventID", out.ID, "error", err)
		return
	}

	if customer, ok := data["customer"].(string); ok {
		out.CustomerID = customer
	}

	if sub, ok := data["subscription"].(string); ok && sub != "" {
		out.SubscriptionID = sub
		return
	}
	if objectType, ok := data["object"].(string); ok && objectType == "subscription" {
		if id, ok := data["id"].(string); ok {
			out.SubscriptionID = id
		}
	}
}
