// Package payment checks provider captures before an order is marked paid.
package payment

import (
	"context"
	"fmt"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/metrics"
	"go.uber.org/zap"
)

// Verification is the provider's view of a capture.
type Verification struct {
	Completed bool
	// Value is the captured amount exactly as the provider formats it.
	Value      string
	Status     string
	PayerEmail string
	UpdateTime string
}

type Provider interface {
	VerifyPayment(ctx context.Context, txID string) (*Verification, error)
}

// TransactionLedger answers whether a transaction id is already attached to
// a stored order.
type TransactionLedger interface {
	TransactionUsed(ctx context.Context, txID string) (bool, error)
}

type Verifier struct {
	provider Provider
	ledger   TransactionLedger
	logger   *zap.Logger
}

func NewVerifier(provider Provider, ledger TransactionLedger, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{provider: provider, ledger: ledger, logger: logger.Named("payment")}
}

// Check accepts txID as payment of totalPrice and returns the provider's
// record of it. The steps run in order and stop at the first failure: the
// capture must be completed, the id must be unused, and the captured value
// must equal totalPrice as a string.
func (v *Verifier) Check(ctx context.Context, txID, totalPrice string) (*Verification, error) {
	log := v.logger.With(zap.String("transaction_id", txID))

	result, err := v.provider.VerifyPayment(ctx, txID)
	if err != nil {
		metrics.RecordPaymentCheck(metrics.PaymentProviderError)
		log.Error("Payment provider lookup failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !result.Completed {
		metrics.RecordPaymentCheck(metrics.PaymentNotVerified)
		log.Warn("Payment not completed")
		return nil, &apperr.Error{Kind: apperr.ErrPaymentNotVerified, Message: "Payment not verified"}
	}

	used, err := v.ledger.TransactionUsed(ctx, txID)
	if err != nil {
		metrics.RecordPaymentCheck(metrics.PaymentLedgerError)
		log.Error("Transaction lookup failed", zap.Error(err))
		return nil, fmt.Errorf("failed to check transaction: %w", err)
	}
	if used {
		metrics.RecordPaymentCheck(metrics.PaymentDuplicate)
		log.Warn("Transaction already used")
		return nil, &apperr.Error{Kind: apperr.ErrDuplicateTransaction, Message: "Transaction has been used before"}
	}

	if result.Value != totalPrice {
		metrics.RecordPaymentCheck(metrics.PaymentMismatch)
		log.Warn("Captured amount does not match order total",
			zap.String("captured", result.Value),
			zap.String("expected", totalPrice),
		)
		return nil, &apperr.Error{Kind: apperr.ErrAmountMismatch, Message: "Incorrect amount paid"}
	}

	metrics.RecordPaymentCheck(metrics.PaymentVerified)
	return result, nil
}
