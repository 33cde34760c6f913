package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("Order not found"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get order: %w", ErrNotFound), http.StatusNotFound},
		{"validation", Validation("No order items"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("Not authorized, no token"), http.StatusUnauthorized},
		{"payment not verified", ErrPaymentNotVerified, http.StatusBadRequest},
		{"duplicate transaction", fmt.Errorf("pay: %w", ErrDuplicateTransaction), http.StatusBadRequest},
		{"amount mismatch", ErrAmountMismatch, http.StatusBadRequest},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Order not found", Message(fmt.Errorf("wrap: %w", NotFound("Order not found"))))
	assert.Equal(t, "incorrect amount paid", Message(ErrAmountMismatch))
	assert.Equal(t, "Internal server error", Message(errors.New("dial tcp: refused")))
}

func TestError_IsKind(t *testing.T) {
	err := Validation("Product already reviewed")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
}
