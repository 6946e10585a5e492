package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for OrderTrigger to ensure the
	// trigger carries an order id in at least one of its two fields.
	v.RegisterStructValidation(orderTriggerStructValidation, OrderTrigger{})

	return v
}

// orderTriggerStructValidation verifies the inserted_id / resource_id
// fallback chain resolves to a non-empty order id.
func orderTriggerStructValidation(sl validatorv10.StructLevel) {
	trig := sl.Current().Interface().(OrderTrigger)

	if trig.OrderID() == "" {
		sl.ReportError(trig.InsertedID, "inserted_id", "InsertedID", "order_id_present", "one of inserted_id or resource_id is required")
	}
}
