package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SetupHandler обработчик сбора платежных методов
type SetupHandler struct {
	service service.SetupService
	log     *logger.Logger
}

// NewSetupHandler создает новый обработчик setup-флоу
func NewSetupHandler(svc service.SetupService, log *logger.Logger) *SetupHandler {
	return &SetupHandler{
		service: svc,
		log:     log,
	}
}

type setupRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

// CreateSession создает hosted-сессию сбора платежного метода.
// Браузер редиректится на возвращенный URL.
func (h *SetupHandler) CreateSession(c *gin.Context) {
	req, ok := bindJSON[setupRequest](c)
	if !ok {
		return
	}

	sess, err := h.service.StartHostedSetup(c.Request.Context(), req.CustomerID)
	if err != nil {
		writeError(c, h.log, err, "Failed to create setup session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}

// CreateIntent создает setup intent для embedded-подтверждения.
func (h *SetupHandler) CreateIntent(c *gin.Context) {
	req, ok := bindJSON[setupRequest](c)
	if !ok {
		return
	}

	intent, err := h.service.StartEmbeddedSetup(c.Request.Context(), req.CustomerID)
	if err != nil {
		writeError(c, h.log, err, "Failed to create setup intent")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": intent.ID, "client_secret": intent.ClientSecret})
}

// CreatePortal открывает billing portal для управления методами оплаты.
func (h *SetupHandler) CreatePortal(c *gin.Context) {
	req, ok := bindJSON[setupRequest](c)
	if !ok {
		return
	}

	portal, err := h.service.ManagePaymentMethods(c.Request.Context(), req.CustomerID)
	if err != nil {
		writeError(c, h.log, err, "Failed to create customer portal session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
