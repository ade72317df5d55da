package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CustomerHandler обработчик для клиентов
type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

// NewCustomerHandler создает новый обработчик клиентов
func NewCustomerHandler(svc service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		log:     log,
	}
}

type createCustomerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// CreateCustomer находит или создает клиента по email.
// Повторный вызов с тем же email возвращает того же клиента.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	req, ok := bindJSON[createCustomerRequest](c)
	if !ok {
		return
	}

	customer, err := h.service.GetOrCreate(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		writeError(c, h.log, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}
