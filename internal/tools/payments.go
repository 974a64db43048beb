package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerPaymentTools() {
	r.register(Definition{
		Name:        "get_payment_method",
		Description: "Get one payment method by ID.",
		InputSchema: objectSchema(map[string]Property{
			"payment_method_id": {Type: "string", Description: "Recharge payment method ID."},
		}, "payment_method_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "payment_method_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/payment_methods/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_payment_methods",
		Description: "List the customer's payment methods.",
		InputSchema: objectSchema(map[string]Property{
			"limit": {Type: "integer"},
			"page":  {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/payment_methods",
				Query:  queryFromArgs(args, "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "update_payment_method",
		Description: "Update a payment method's billing address.",
		InputSchema: objectSchema(map[string]Property{
			"payment_method_id": {Type: "string"},
			"billing_address":   {Type: "object", Description: "New billing address fields (address1, city, province, zip, country_code, ...)."},
		}, "payment_method_id", "billing_address"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "payment_method_id")
			if err != nil {
				return Operation{}, err
			}
			addr := args.Get("billing_address")
			if !addr.Exists() || !addr.IsObject() {
				return Operation{}, missingArg("billing_address")
			}
			return Operation{
				Method: http.MethodPut,
				Path:   "/payment_methods/" + id,
				Body:   map[string]interface{}{"billing_address": addr.Value()},
			}, nil
		},
	})
}
