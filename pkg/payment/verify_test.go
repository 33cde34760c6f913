package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) VerifyPayment(ctx context.Context, txID string) (*Verification, error) {
	args := m.Called(ctx, txID)
	if v := args.Get(0); v != nil {
		return v.(*Verification), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) TransactionUsed(ctx context.Context, txID string) (bool, error) {
	args := m.Called(ctx, txID)
	return args.Bool(0), args.Error(1)
}

func TestVerifier_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts completed unused capture with matching amount", func(t *testing.T) {
		provider := new(mockProvider)
		ledger := new(mockLedger)
		provider.On("VerifyPayment", ctx, "TX1").Return(&Verification{
			Completed:  true,
			Value:      "129.99",
			Status:     "COMPLETED",
			PayerEmail: "buyer@example.com",
		}, nil)
		ledger.On("TransactionUsed", ctx, "TX1").Return(false, nil)

		v, err := NewVerifier(provider, ledger, nil).Check(ctx, "TX1", "129.99")
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", v.Status)
		assert.Equal(t, "buyer@example.com", v.PayerEmail)
		provider.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("incomplete capture stops before the ledger lookup", func(t *testing.T) {
		provider := new(mockProvider)
		ledger := new(mockLedger)
		provider.On("VerifyPayment", ctx, "TX2").Return(&Verification{Completed: false, Value: "129.99"}, nil)

		_, err := NewVerifier(provider, ledger, nil).Check(ctx, "TX2", "129.99")
		assert.ErrorIs(t, err, apperr.ErrPaymentNotVerified)
		assert.Equal(t, "Payment not verified", apperr.Message(err))
		ledger.AssertNotCalled(t, "TransactionUsed", mock.Anything, mock.Anything)
	})

	t.Run("used transaction wins over amount mismatch", func(t *testing.T) {
		provider := new(mockProvider)
		ledger := new(mockLedger)
		provider.On("VerifyPayment", ctx, "TX3").Return(&Verification{Completed: true, Value: "1.00"}, nil)
		ledger.On("TransactionUsed", ctx, "TX3").Return(true, nil)

		_, err := NewVerifier(provider, ledger, nil).Check(ctx, "TX3", "129.99")
		assert.ErrorIs(t, err, apperr.ErrDuplicateTransaction)
		assert.NotErrorIs(t, err, apperr.ErrAmountMismatch)
	})

	t.Run("amount compared as exact string", func(t *testing.T) {
		provider := new(mockProvider)
		ledger := new(mockLedger)
		provider.On("VerifyPayment", ctx, "TX4").Return(&Verification{Completed: true, Value: "10"}, nil)
		ledger.On("TransactionUsed", ctx, "TX4").Return(false, nil)

		_, err := NewVerifier(provider, ledger, nil).Check(ctx, "TX4", "10.00")
		assert.ErrorIs(t, err, apperr.ErrAmountMismatch)
		assert.Equal(t, 400, apperr.Status(err))
	})

	t.Run("provider failure is not a payment verdict", func(t *testing.T) {
		provider := new(mockProvider)
		ledger := new(mockLedger)
		provider.On("VerifyPayment", ctx, "TX5").Return(nil, errors.New("connection refused"))

		_, err := NewVerifier(provider, ledger, nil).Check(ctx, "TX5", "10.00")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrPaymentNotVerified)
		assert.Equal(t, 500, apperr.Status(err))
		provider.AssertNumberOfCalls(t, "VerifyPayment", 1)
		ledger.AssertNotCalled(t, "TransactionUsed", mock.Anything, mock.Anything)
	})

	t.Run("ledger failure is wrapped and counted", func(t *testing.T) {
		provider := new(mockProvider)
		ledger := new(mockLedger)
		provider.On("VerifyPayment", ctx, "TX6").Return(&Verification{Completed: true, Value: "10.00"}, nil)
		ledger.On("TransactionUsed", ctx, "TX6").Return(false, errors.New("server selection timeout"))

		before := testutil.ToFloat64(metrics.PaymentChecks(metrics.PaymentLedgerError))
		v, err := NewVerifier(provider, ledger, nil).Check(ctx, "TX6", "10.00")
		require.Error(t, err)
		assert.Nil(t, v)
		assert.Contains(t, err.Error(), "failed to check transaction")
		assert.Equal(t, 500, apperr.Status(err))
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.PaymentChecks(metrics.PaymentLedgerError)))
	})
}
