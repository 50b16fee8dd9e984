package lifecycle

import (
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editableOrder(now time.Time) model.Order {
	deadline := now.Add(10 * time.Minute)
	return model.Order{
		OrderCode:       "ORD-ABCDEFGH12",
		CustomerName:    "Jane Doe",
		CustomerPhone:   "0123456789",
		DeliveryAddress: "1 Main Street",
		TotalAmount:     decimal.RequireFromString("42.00"),
		Status:          model.StatusPending,
		OrderDeadline:   &deadline,
		UpdatedAt:       now.Add(-time.Hour),
	}
}

func TestAttemptEdit_Success(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := editableOrder(now)

	result, err := AttemptEdit(order, map[string]any{
		model.FieldCustomerName:    "  John Roe ",
		model.FieldDeliveryAddress: "2 High Street",
	}, now)

	require.NoError(t, err)
	assert.Equal(t, "John Roe", result.CustomerName)
	assert.Equal(t, "0123456789", result.CustomerPhone)
	assert.Equal(t, "2 High Street", result.DeliveryAddress)
	assert.Equal(t, now, result.UpdatedAt)
	assert.True(t, order.TotalAmount.Equal(result.TotalAmount))
	assert.Equal(t, order.OrderDeadline, result.OrderDeadline)

	// the input is not mutated
	assert.Equal(t, "Jane Doe", order.CustomerName)
}

func TestAttemptEdit_Rejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expiredOrder := editableOrder(now)
	past := now.Add(-time.Second)
	expiredOrder.OrderDeadline = &past

	paidOrder := editableOrder(now)
	paidOrder.Status = model.StatusPaid

	legacyOrder := editableOrder(now)
	legacyOrder.OrderDeadline = nil

	tests := []struct {
		name      string
		order     model.Order
		proposed  map[string]any
		expectErr error
	}{
		{
			name:      "Status in payload",
			order:     editableOrder(now),
			proposed:  map[string]any{"status": "delivered"},
			expectErr: model.ErrForbiddenField,
		},
		{
			name:      "Total amount alongside an allowed field",
			order:     editableOrder(now),
			proposed:  map[string]any{model.FieldCustomerName: "X", "totalAmount": 1},
			expectErr: model.ErrForbiddenField,
		},
		{
			name:      "Order code",
			order:     editableOrder(now),
			proposed:  map[string]any{"orderCode": "ORD-0000000000"},
			expectErr: model.ErrForbiddenField,
		},
		{
			name:      "Items",
			order:     editableOrder(now),
			proposed:  map[string]any{"items": []any{}},
			expectErr: model.ErrForbiddenField,
		},
		{
			name:      "Forbidden field wins over closed window",
			order:     expiredOrder,
			proposed:  map[string]any{"status": "paid"},
			expectErr: model.ErrForbiddenField,
		},
		{
			name:      "Deadline passed",
			order:     expiredOrder,
			proposed:  map[string]any{model.FieldCustomerName: "John"},
			expectErr: model.ErrEditWindowClosed,
		},
		{
			name:      "No longer pending",
			order:     paidOrder,
			proposed:  map[string]any{model.FieldCustomerName: "John"},
			expectErr: model.ErrEditWindowClosed,
		},
		{
			name:      "Legacy order without deadline",
			order:     legacyOrder,
			proposed:  map[string]any{model.FieldCustomerName: "John"},
			expectErr: model.ErrEditWindowClosed,
		},
		{
			name:      "Empty payload",
			order:     editableOrder(now),
			proposed:  map[string]any{},
			expectErr: model.ErrNoEditableFields,
		},
		{
			name:      "Blank name",
			order:     editableOrder(now),
			proposed:  map[string]any{model.FieldCustomerName: "   "},
			expectErr: model.ErrInvalidContact,
		},
		{
			name:      "Non-string phone",
			order:     editableOrder(now),
			proposed:  map[string]any{model.FieldCustomerPhone: 12345},
			expectErr: model.ErrInvalidContact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := AttemptEdit(tt.order, tt.proposed, now)

			require.Error(t, err)
			assert.Equal(t, tt.expectErr, err)
			assert.Equal(t, tt.order, result)
		})
	}
}
