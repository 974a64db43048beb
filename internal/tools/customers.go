package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerCustomerTools() {
	r.register(Definition{
		Name:        "get_customer",
		Description: "Get the customer's Recharge profile, including external IDs and subscription-related counters.",
		InputSchema: objectSchema(nil),
		Bind: func(gjson.Result) (Operation, error) {
			return Operation{Method: http.MethodGet, Path: "/customers/{customer_id}"}, nil
		},
	})

	r.register(Definition{
		Name:        "update_customer",
		Description: "Update the customer's profile fields.",
		InputSchema: objectSchema(map[string]Property{
			"email":      {Type: "string", Description: "New email address for the customer."},
			"first_name": {Type: "string"},
			"last_name":  {Type: "string"},
			"phone":      {Type: "string"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			body := bodyFromArgs(args, "email", "first_name", "last_name", "phone")
			if err := requireAnyBodyField(body, "email, first_name, last_name, phone"); err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodPut, Path: "/customers/{customer_id}", Body: body}, nil
		},
	})
}
