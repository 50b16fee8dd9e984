package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus normalises a stored or user-supplied status string.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// Editable order fields, named as they appear in JSON payloads.
const (
	FieldCustomerName    = "customerName"
	FieldCustomerPhone   = "customerPhone"
	FieldDeliveryAddress = "deliveryAddress"
)

// Order represents a customer order.
type Order struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderCode           string          `json:"orderCode" db:"order_code"`
	CustomerName        string          `json:"customerName" db:"customer_name"`
	CustomerPhone       string          `json:"customerPhone" db:"customer_phone"`
	CustomerEmail       *string         `json:"customerEmail,omitempty" db:"customer_email"`
	DeliveryAddress     string          `json:"deliveryAddress" db:"delivery_address"`
	TotalAmount         decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status              Status          `json:"status" db:"status"`
	OrderDeadline       *time.Time      `json:"orderDeadline,omitempty" db:"order_deadline"`
	DeadlineWarningSent bool            `json:"deadlineWarningSent" db:"deadline_warning_sent"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
}

// HasEmail reports whether the order carries a usable customer email.
func (o *Order) HasEmail() bool {
	return o.CustomerEmail != nil && strings.TrimSpace(*o.CustomerEmail) != ""
}

// OrderItem is a line item snapshot taken at checkout time.
type OrderItem struct {
	ID           uuid.UUID       `json:"-" db:"id"`
	OrderID      uuid.UUID       `json:"-" db:"order_id"`
	ProductID    string          `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"product_name"`
	ProductPrice decimal.Decimal `json:"productPrice" db:"product_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// VerifyTotals checks subtotal == price * quantity for every item and
// total == sum of subtotals.
func (o *Order) VerifyTotals(items []OrderItem) error {
	sum := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if !item.ProductPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Equal(item.Subtotal) {
			return ErrTotalMismatch
		}
		sum = sum.Add(item.Subtotal)
	}
	if !sum.Equal(o.TotalAmount) {
		return ErrTotalMismatch
	}
	return nil
}

// ContactDetails holds the customer-editable part of an order.
type ContactDetails struct {
	CustomerName    string `validate:"required,max=255"`
	CustomerPhone   string `validate:"required,max=32"`
	DeliveryAddress string `validate:"required,max=1000"`
}

// CheckoutRequest represents the request payload for placing an order.
type CheckoutRequest struct {
	CustomerName    string             `json:"customerName" validate:"required,max=255"`
	CustomerPhone   string             `json:"customerPhone" validate:"required,max=32"`
	CustomerEmail   *string            `json:"customerEmail,omitempty" validate:"omitempty,email"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required,max=1000"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest represents a single item in a checkout request.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// StatusUpdateRequest is the admin payload for changing an order's status.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order    Order         `json:"order"`
	Items    []OrderItem   `json:"items"`
	Deadline DeadlineState `json:"deadline"`
}

// DeadlineState is the evaluated edit window of an order at a point in time.
type DeadlineState struct {
	RemainingMs int64  `json:"remainingMs"`
	Display     string `json:"display"`
	Editable    bool   `json:"editable"`
	Expired     bool   `json:"expired"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// ScanResult summarises one run of the deadline warning scanner.
type ScanResult struct {
	// Processed counts warnings sent and recorded by this run.
	Processed int `json:"processed"`
	// Skipped counts candidates that were no longer eligible once reloaded.
	Skipped int `json:"skipped"`
	// NoRecipient counts orders without a customer email.
	NoRecipient int `json:"noRecipient"`
	// Duplicates counts warnings sent by this run whose flag write found the
	// flag already set by an overlapping run.
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors"`
}
