package handlers

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dhoini/storefront-billing/internal/service"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78/webhook"
)

const testWebhookSecret = "whsec_test_secret"

type stubWebhookService struct {
	processErr error
	events     []service.ProviderEvent
}

func (s *stubWebhookService) ProcessEvent(_ context.Context, event service.ProviderEvent) error {
	if s.processErr != nil {
		return s.processErr
	}
	s.events = append(s.events, event)
	return nil
}

func newWebhookRouter(t *testing.T, svc *stubWebhookService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := NewWebhookHandler(svc, testWebhookSecret, logger.New(logger.FATAL))
	require.NoError(t, err)
	r := gin.New()
	r.POST("/webhooks/stripe", h.HandleStripeWebhook)
	return r
}

// signPayload строит заголовок Stripe-Signature для тестового payload.
func signPayload(payload string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func postWebhook(r *gin.Engine, payload, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRequiresSignatureHeader(t *testing.T) {
	svc := &stubWebhookService{}
	r := newWebhookRouter(t, svc)

	w := postWebhook(r, `{}`, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, svc.events)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	r := newWebhookRouter(t, svc)

	w := postWebhook(r, `{}`, "t=123,v1=deadbeef")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, svc.events)
}

func TestWebhookExtractsInvoiceRefs(t *testing.T) {
	svc := &stubWebhookService{}
	r := newWebhookRouter(t, svc)

	payload := `{
		"id": "evt_1",
		"type": "invoice.paid",
		"data": {"object": {"object": "invoice", "customer": "cus_1", "subscription": "sub_1"}}
	}`
	w := postWebhook(r, payload, signPayload(payload))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.events, 1)
	require.Equal(t, "evt_1", svc.events[0].ID)
	require.Equal(t, "invoice.paid", svc.events[0].Type)
	require.Equal(t, "cus_1", svc.events[0].CustomerID)
	require.Equal(t, "sub_1", svc.events[0].SubscriptionID)
}

func TestWebhookExtractsSubscriptionObjectID(t *testing.T) {
	svc := &stubWebhookService{}
	r := newWebhookRouter(t, svc)

	payload := `{
		"id": "evt_2",
		"type": "customer.subscription.deleted",
		"data": {"object": {"object": "subscription", "id": "sub_2", "customer": "cus_1"}}
	}`
	w := postWebhook(r, payload, signPayload(payload))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.events, 1)
	require.Equal(t, "sub_2", svc.events[0].SubscriptionID)
}

func TestWebhookProcessingFailureForcesRetry(t *testing.T) {
	svc := &stubWebhookService{processErr: errors.New("kafka down")}
	r := newWebhookRouter(t, svc)

	payload := `{"id": "evt_3", "type": "invoice.paid", "data": {"object": {}}}`
	w := postWebhook(r, payload, signPayload(payload))

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookHandlerRequiresSecret(t *testing.T) {
	_, err := NewWebhookHandler(&stubWebhookService{}, "", logger.New(logger.FATAL))
	require.Error(t, err)
}
