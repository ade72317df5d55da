package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubBalanceService struct {
	creditErr error
	debitErr  error

	credits []float64
	debits  []float64
}

func (s *stubBalanceService) Credit(_ context.Context, customerID string, amount float64) (*domain.BalanceTransaction, error) {
	if s.creditErr != nil {
		return nil, s.creditErr
	}
	s.credits = append(s.credits, amount)
	return &domain.BalanceTransaction{ID: "cbtxn_1", CustomerID: customerID, Amount: -domain.DollarsToCents(amount)}, nil
}

func (s *stubBalanceService) Debit(_ context.Context, customerID string, amount float64) (*domain.BalanceTransaction, error) {
	if s.debitErr != nil {
		return nil, s.debitErr
	}
	s.debits = append(s.debits, amount)
	return &domain.BalanceTransaction{ID: "cbtxn_2", CustomerID: customerID, Amount: domain.DollarsToCents(amount)}, nil
}

func (s *stubBalanceService) TopUpCheckout(_ context.Context, customerID string, amount float64) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{ID: "cs_topup", URL: "https://checkout.example/topup", CustomerID: customerID}, nil
}

func newBalanceRouter(svc *stubBalanceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBalanceHandler(svc, logger.New(logger.FATAL))
	r := gin.New()
	r.POST("/balance/credit", h.Credit)
	r.POST("/balance/debit", h.Debit)
	r.POST("/balance/checkout", h.Checkout)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreditEndpoint(t *testing.T) {
	svc := &stubBalanceService{}
	r := newBalanceRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/balance/credit", `{"customer_id":"cus_1","amount":19.99}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []float64{19.99}, svc.credits)
	require.Contains(t, w.Body.String(), `"cbtxn_1"`)
}

func TestCreditEndpointValidation(t *testing.T) {
	svc := &stubBalanceService{}
	r := newBalanceRouter(svc)

	tests := []struct {
		name string
		body string
	}{
		{"missing customer", `{"amount":10}`},
		{"zero amount", `{"customer_id":"cus_1","amount":0}`},
		{"negative amount", `{"customer_id":"cus_1","amount":-5}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/balance/credit", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	require.Empty(t, svc.credits)
}

func TestCreditEndpointNoDefaultPaymentMethod(t *testing.T) {
	svc := &stubBalanceService{creditErr: domain.ErrNoDefaultPaymentMethod}
	r := newBalanceRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/balance/credit", `{"customer_id":"cus_1","amount":10}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDebitEndpointInsufficientBalance(t *testing.T) {
	svc := &stubBalanceService{debitErr: domain.ErrInsufficientBalance}
	r := newBalanceRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/balance/debit", `{"customer_id":"cus_1","amount":10}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "insufficient balance")
}

func TestCheckoutEndpointReturnsRedirect(t *testing.T) {
	svc := &stubBalanceService{}
	r := newBalanceRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/balance/checkout", `{"customer_id":"cus_1","amount":25}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "https://checkout.example/topup")
}
