package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler обработчик жизненного цикла подписок
type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

// NewSubscriptionHandler создает новый обработчик подписок
func NewSubscriptionHandler(svc service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: svc,
		log:     log,
	}
}

type subscriptionCheckoutRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Plan     string `json:"plan" binding:"required"`
	Interval string `json:"interval" binding:"omitempty,oneof=monthly yearly"`
}

type subscriptionSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Checkout создает checkout-сессию оформления подписки.
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	req, ok := bindJSON[subscriptionCheckoutRequest](c)
	if !ok {
		return
	}

	sess, err := h.service.Checkout(c.Request.Context(), req.Email, req.Plan, req.Interval)
	if err != nil {
		writeError(c, h.log, err, "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}

// Cancel отменяет подписку клиента в конце оплаченного периода.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	req, ok := bindJSON[subscriptionSessionRequest](c)
	if !ok {
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), req.SessionID)
	if err != nil {
		writeError(c, h.log, err, "Failed to cancel subscription")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Portal открывает billing portal для управления подпиской.
func (h *SubscriptionHandler) Portal(c *gin.Context) {
	req, ok := bindJSON[subscriptionSessionRequest](c)
	if !ok {
		return
	}

	portal, err := h.service.Portal(c.Request.Context(), req.SessionID)
	if err != nil {
		writeError(c, h.log, err, "Failed to create billing portal session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
