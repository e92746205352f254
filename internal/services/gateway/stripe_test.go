package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"1", 100},
		{"29.70", 2970},
		{"0.01", 1},
		{"10.005", 1001}, // half a cent rounds away from zero
		{"10.014", 1001},
		{"123456.78", 12345678},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := toCents(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessorError(t *testing.T) {
	cause := errors.New("boom")
	err := &ProcessorError{Code: "card_declined", Message: "insufficient funds on card", Err: cause}

	assert.Contains(t, err.Error(), "card_declined")
	assert.Contains(t, err.Error(), "insufficient funds on card")
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("withdraw: %w", err)
	var perr *ProcessorError
	assert.ErrorAs(t, wrapped, &perr)
	assert.Equal(t, "card_declined", perr.Code)
}
