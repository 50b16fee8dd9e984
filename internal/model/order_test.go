package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  Status
		expectErr bool
	}{
		{name: "Lowercase", input: "pending", expected: StatusPending},
		{name: "Uppercase legacy value", input: "SHIPPED", expected: StatusShipped},
		{name: "Mixed case with spaces", input: "  Delivered ", expected: StatusDelivered},
		{name: "Cancelled", input: "cancelled", expected: StatusCancelled},
		{name: "Unknown", input: "refunded", expectErr: true},
		{name: "Empty", input: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := ParseStatus(tt.input)

			if tt.expectErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidStatus, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestOrder_VerifyTotals(t *testing.T) {
	items := []OrderItem{
		{ProductPrice: decimal.RequireFromString("10.50"), Quantity: 2, Subtotal: decimal.RequireFromString("21.00")},
		{ProductPrice: decimal.RequireFromString("3.25"), Quantity: 3, Subtotal: decimal.RequireFromString("9.75")},
	}

	t.Run("Consistent totals", func(t *testing.T) {
		order := &Order{TotalAmount: decimal.RequireFromString("30.75")}
		assert.NoError(t, order.VerifyTotals(items))
	})

	t.Run("Wrong total", func(t *testing.T) {
		order := &Order{TotalAmount: decimal.RequireFromString("30.00")}
		assert.Equal(t, ErrTotalMismatch, order.VerifyTotals(items))
	})

	t.Run("Wrong subtotal", func(t *testing.T) {
		bad := []OrderItem{
			{ProductPrice: decimal.RequireFromString("10.50"), Quantity: 2, Subtotal: decimal.RequireFromString("20.00")},
		}
		order := &Order{TotalAmount: decimal.RequireFromString("20.00")}
		assert.Equal(t, ErrTotalMismatch, order.VerifyTotals(bad))
	})

	t.Run("Zero quantity", func(t *testing.T) {
		bad := []OrderItem{{ProductPrice: decimal.RequireFromString("1"), Quantity: 0, Subtotal: decimal.Zero}}
		order := &Order{TotalAmount: decimal.Zero}
		assert.Equal(t, ErrInvalidQuantity, order.VerifyTotals(bad))
	})
}

func TestOrder_HasEmail(t *testing.T) {
	empty := "  "
	email := "jane@example.com"

	assert.False(t, (&Order{}).HasEmail())
	assert.False(t, (&Order{CustomerEmail: &empty}).HasEmail())
	assert.True(t, (&Order{CustomerEmail: &email}).HasEmail())
}
