package service

import (
	"context"
	"testing"

	"github.com/Dhoini/storefront-billing/internal/domain"

	"github.com/stretchr/testify/require"
)

func newBalanceFixture(t *testing.T) (*stubGateway, BalanceService) {
	t.Helper()
	gw := newStubGateway()
	svc := NewBalanceService(gw, nil, testMetrics(), testLogger())
	return gw, svc
}

func TestCreditPostsNegativeTransactionOnSuccess(t *testing.T) {
	gw, svc := newBalanceFixture(t)
	gw.addCustomer(&domain.Customer{ID: "cus_1", DefaultPaymentMethod: "pm_1"})

	bt, err := svc.Credit(context.Background(), "cus_1", 19.999)
	require.NoError(t, err)

	require.Len(t, gw.charges, 1)
	require.Equal(t, "pm_1", gw.charges[0].paymentMethodID)
	require.Equal(t, int64(2000), gw.charges[0].amount)

	require.Len(t, gw.transactions, 1)
	require.Equal(t, int64(-2000), gw.transactions[0].amount)
	require.Equal(t, int64(-2000), bt.Amount)
}

func TestCreditWithoutDefaultPaymentMethodAbortsBeforeCharge(t *testing.T) {
	gw, svc := newBalanceFixture(t)
	gw.addCustomer(&domain.Customer{ID: "cus_1"})

	_, err := svc.Credit(context.Background(), "cus_1", 10)
	require.ErrorIs(t, err, domain.ErrNoDefaultPaymentMethod)
	require.Empty(t, gw.charges)
	require.Empty(t, gw.transactions)
}

func TestCreditDoesNotPostTransactionWhenChargeFails(t *testing.T) {
	gw, svc := newBalanceFixture(t)
	gw.addCustomer(&domain.Customer{ID: "cus_1", DefaultPaymentMethod: "pm_1"})
	gw.chargeStatus = "requires_payment_method"

	_, err := svc.Credit(context.Background(), "cus_1", 10)
	require.ErrorIs(t, err, domain.ErrPaymentFailed)
	require.Len(t, gw.charges, 1)
	require.Empty(t, gw.transactions, "no balance transaction on a failed charge")
}

func TestDebitAcceptedWhenBalanceCoversAmount(t *testing.T) {
	gw, svc := newBalanceFixture(t)
	gw.addCustomer(&domain.Customer{ID: "cus_1", Balance: -500})

	bt, err := svc.Debit(context.Background(), "cus_1", 5.00)
	require.NoError(t, err)
	require.Equal(t, int64(500), bt.Amount)

	require.Len(t, gw.transactions, 1)
	require.Equal(t, int64(500), gw.transactions[0].amount)
}

func TestDebitRejectedWhenItWouldOverdraw(t *testing.T) {
	gw, svc := newBalanceFixture(t)
	gw.addCustomer(&domain.Customer{ID: "cus_1", Balance: -500})

	_, err := svc.Debit(context.Background(), "cus_1", 6.00)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.Empty(t, gw.transactions)
}

func TestBalanceValidationRejectsBeforeProviderCalls(t *testing.T) {
	gw, svc := newBalanceFixture(t)

	_, err := svc.Credit(context.Background(), "", 10)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Debit(context.Background(), "cus_1", 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.TopUpCheckout(context.Background(), "cus_1", -5)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.Empty(t, gw.charges)
	require.Empty(t, gw.transactions)
}

func TestTopUpCheckoutReturnsRedirectURL(t *testing.T) {
	gw, svc := newBalanceFixture(t)
	gw.addCustomer(&domain.Customer{ID: "cus_1"})

	sess, err := svc.TopUpCheckout(context.Background(), "cus_1", 25)
	require.NoError(t, err)
	require.NotEmpty(t, sess.URL)
	require.Empty(t, gw.transactions, "hosted checkout needs no separate balance transaction")
}
