package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SessionHandler восстанавливает состояние страницы из параметров редиректа
type SessionHandler struct {
	service service.SetupService
	log     *logger.Logger
}

// NewSessionHandler создает новый обработчик восстановления состояния
func NewSessionHandler(svc service.SetupService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		log:     log,
	}
}

// Recover восстанавливает состояние из query-параметров редиректа.
// session_id разворачивается в клиента и, при наличии setup intent,
// завершает установку платежного метода; customer_id принимается как есть.
// Повторная загрузка того же URL безопасна.
func (h *SessionHandler) Recover(c *gin.Context) {
	sessionID := c.Query("session_id")
	customerID := c.Query("customer_id")
	canceled := c.Query("canceled") == "true"

	// Брошенный hosted-флоу: никакого состояния у провайдера нет,
	// возвращаем клиента из cancel URL
	if canceled {
		c.JSON(http.StatusOK, gin.H{
			"customer_id":     customerID,
			"setup_completed": false,
			"canceled":        true,
		})
		return
	}

	state, err := h.service.Recover(c.Request.Context(), sessionID, customerID)
	if err != nil {
		writeError(c, h.log, err, "Failed to retrieve session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id":     state.CustomerID,
		"setup_completed": state.SetupCompleted,
		"canceled":        false,
	})
}
