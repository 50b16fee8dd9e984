package notify

import (
	"testing"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *model.Order {
	email := "ada@example.com"
	return &model.Order{
		OrderCode:     "ORD-7K3M9QX2PA",
		CustomerName:  "Ada Lovelace",
		CustomerPhone: "+15550100",
		CustomerEmail: &email,
		TotalAmount:   decimal.RequireFromString("42.5"),
		Status:        model.StatusPending,
	}
}

func TestComposer_OrderLink(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{name: "plain", baseURL: "https://shop.example.com", want: "https://shop.example.com/orders/ORD-7K3M9QX2PA"},
		{name: "trailing slash", baseURL: "https://shop.example.com/", want: "https://shop.example.com/orders/ORD-7K3M9QX2PA"},
		{name: "sub path", baseURL: "https://example.com/shop", want: "https://example.com/shop/orders/ORD-7K3M9QX2PA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewComposer(tt.baseURL)
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.OrderLink("ORD-7K3M9QX2PA"))
		})
	}
}

func TestComposer_DeadlineWarning(t *testing.T) {
	c, err := NewComposer("https://shop.example.com")
	require.NoError(t, err)

	msg, err := c.DeadlineWarning(testOrder(), 12)

	require.NoError(t, err)
	assert.Equal(t, "Order ORD-7K3M9QX2PA: 12 minutes left to make changes", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Hi Ada Lovelace")
	assert.Contains(t, msg.HTMLBody, "12 more minutes")
	assert.Contains(t, msg.HTMLBody, "Order total: 42.50")
	assert.Contains(t, msg.HTMLBody, "ORD-7K3M9QX2PA")
	assert.Contains(t, msg.HTMLBody, `href="https://shop.example.com/orders/ORD-7K3M9QX2PA"`)

	msg, err = c.DeadlineWarning(testOrder(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Order ORD-7K3M9QX2PA: 1 minute left to make changes", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "1 more minute.")
}

func TestComposer_StatusUpdate(t *testing.T) {
	c, err := NewComposer("https://shop.example.com")
	require.NoError(t, err)

	msg, err := c.StatusUpdate(testOrder(), model.StatusPaid, model.StatusShipped)

	require.NoError(t, err)
	assert.Equal(t, "Order ORD-7K3M9QX2PA is now shipped", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "<strong>paid</strong> to <strong>shipped</strong>")
	assert.Contains(t, msg.HTMLBody, "42.50")
}

func TestComposer_ReviewRequest(t *testing.T) {
	c, err := NewComposer("https://shop.example.com")
	require.NoError(t, err)

	msg, err := c.ReviewRequest(testOrder())

	require.NoError(t, err)
	assert.Equal(t, "How was your order ORD-7K3M9QX2PA?", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "has been delivered")
	assert.Contains(t, msg.HTMLBody, "/orders/ORD-7K3M9QX2PA")
}

func TestComposer_EscapesCustomerInput(t *testing.T) {
	c, err := NewComposer("https://shop.example.com")
	require.NoError(t, err)

	order := testOrder()
	order.CustomerName = `<script>alert("x")</script>`

	msg, err := c.ReviewRequest(order)

	require.NoError(t, err)
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
}
