package lifecycle

import (
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// editableFields maps payload keys onto the contact field they replace.
var editableFields = map[string]func(*model.ContactDetails, string){
	model.FieldCustomerName:    func(c *model.ContactDetails, v string) { c.CustomerName = v },
	model.FieldCustomerPhone:   func(c *model.ContactDetails, v string) { c.CustomerPhone = v },
	model.FieldDeliveryAddress: func(c *model.ContactDetails, v string) { c.DeliveryAddress = v },
}

// AttemptEdit applies a customer's proposed contact changes to order.
//
// Only customerName, customerPhone and deliveryAddress may appear in
// proposed; any other key fails with ErrForbiddenField, checked before the
// edit window so an integrity problem is never reported as an expiry. The
// window itself is checked against now, which callers must take from the
// server clock at write time.
func AttemptEdit(order model.Order, proposed map[string]any, now time.Time) (model.Order, error) {
	for key := range proposed {
		if _, ok := editableFields[key]; !ok {
			return order, model.ErrForbiddenField
		}
	}

	if !IsEditable(order.Status, order.OrderDeadline, now) {
		return order, model.ErrEditWindowClosed
	}

	if len(proposed) == 0 {
		return order, model.ErrNoEditableFields
	}

	contact := model.ContactDetails{
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		DeliveryAddress: order.DeliveryAddress,
	}
	for key, raw := range proposed {
		value, ok := raw.(string)
		if !ok {
			return order, model.ErrInvalidContact
		}
		editableFields[key](&contact, strings.TrimSpace(value))
	}

	if err := validate.Struct(contact); err != nil {
		return order, model.ErrInvalidContact
	}

	order.CustomerName = contact.CustomerName
	order.CustomerPhone = contact.CustomerPhone
	order.DeliveryAddress = contact.DeliveryAddress
	order.UpdatedAt = now
	return order, nil
}
