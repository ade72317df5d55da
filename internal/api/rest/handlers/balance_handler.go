package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BalanceHandler обработчик операций с балансом
type BalanceHandler struct {
	service service.BalanceService
	log     *logger.Logger
}

// NewBalanceHandler создает новый обработчик баланса
func NewBalanceHandler(svc service.BalanceService, log *logger.Logger) *BalanceHandler {
	return &BalanceHandler{
		service: svc,
		log:     log,
	}
}

type balanceRequest struct {
	CustomerID string  `json:"customer_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"` // в долларах
}

// Credit списывает сумму с метода по умолчанию и зачисляет ее на баланс.
func (h *BalanceHandler) Credit(c *gin.Context) {
	req, ok := bindJSON[balanceRequest](c)
	if !ok {
		return
	}

	bt, err := h.service.Credit(c.Request.Context(), req.CustomerID, req.Amount)
	if err != nil {
		writeError(c, h.log, err, "Failed to charge customer and fund balance")
		return
	}

	c.JSON(http.StatusOK, bt)
}

// Debit списывает сумму с баланса клиента.
func (h *BalanceHandler) Debit(c *gin.Context) {
	req, ok := bindJSON[balanceRequest](c)
	if !ok {
		return
	}

	bt, err := h.service.Debit(c.Request.Context(), req.CustomerID, req.Amount)
	if err != nil {
		writeError(c, h.log, err, "Failed to debit funds")
		return
	}

	c.JSON(http.StatusOK, bt)
}

// Checkout создает hosted checkout-сессию ручного пополнения баланса.
func (h *BalanceHandler) Checkout(c *gin.Context) {
	req, ok := bindJSON[balanceRequest](c)
	if !ok {
		return
	}

	sess, err := h.service.TopUpCheckout(c.Request.Context(), req.CustomerID, req.Amount)
	if err != nil {
		writeError(c, h.log, err, "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}
