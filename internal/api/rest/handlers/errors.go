package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/pkg/logger"
	"github.com/Dhoini/storefront-billing/pkg/res"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
)

// writeError транслирует ошибку операции в единый JSON-ответ.
// Таксономия: ошибки валидации -> 400, отсутствие ресурса -> 404,
// бизнес-отказы -> 422, ошибки провайдера -> его сообщение со статусом 502
// (карточные - 422), все неопознанное -> fallback-сообщение операции.
func writeError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, res.ErrorResponse{Error: "Customer not found. Please contact support."})
		return
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNoDefaultPaymentMethod),
		errors.Is(err, domain.ErrNoActiveSubscription),
		errors.Is(err, domain.ErrPaymentFailed):
		c.JSON(http.StatusUnprocessableEntity, res.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, res.ErrorResponse{Error: fallback})
		return
	}

	// Ошибку провайдера отдаем его же сообщением
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		status := http.StatusBadGateway
		if stripeErr.Type == stripe.ErrorTypeCard {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, res.ErrorResponse{Error: stripeErr.Msg})
		return
	}

	log.Errorw("Unrecognized operation error", "error", err)
	c.JSON(http.StatusBadGateway, res.ErrorResponse{Error: fallback})
}

// bindJSON декодирует и валидирует тело запроса; при ошибке отвечает 400.
func bindJSON[T any](c *gin.Context) (*T, bool) {
	var payload T
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return nil, false
	}
	return &payload, true
}
