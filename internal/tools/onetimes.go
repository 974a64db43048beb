package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerOnetimeTools() {
	r.register(Definition{
		Name:        "get_onetime",
		Description: "Get one one-time product addition by ID.",
		InputSchema: objectSchema(map[string]Property{
			"onetime_id": {Type: "string", Description: "Recharge onetime ID."},
		}, "onetime_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "onetime_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/onetimes/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_onetimes",
		Description: "List the customer's one-time product additions.",
		InputSchema: objectSchema(map[string]Property{
			"limit": {Type: "integer"},
			"page":  {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/onetimes",
				Query:  queryFromArgs(args, "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "create_onetime",
		Description: "Add a one-time product to an upcoming delivery.",
		InputSchema: objectSchema(map[string]Property{
			"address_id":               {Type: "string", Description: "Address the onetime ships with."},
			"next_charge_scheduled_at": {Type: "string", Description: "Charge date, YYYY-MM-DD."},
			"quantity":                 {Type: "integer"},
			"external_variant_id":      {Type: "string"},
			"external_product_id":      {Type: "string"},
			"price":                    {Type: "number"},
			"properties":               {Type: "array"},
		}, "address_id", "next_charge_scheduled_at", "quantity", "external_variant_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			for _, key := range []string{"address_id", "next_charge_scheduled_at", "quantity", "external_variant_id"} {
				if !args.Get(key).Exists() {
					return Operation{}, missingArg(key)
				}
			}
			body := bodyFromArgs(args, "address_id", "next_charge_scheduled_at",
				"quantity", "external_variant_id", "external_product_id", "price", "properties")
			return Operation{Method: http.MethodPost, Path: "/onetimes", Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "update_onetime",
		Description: "Update a one-time product addition.",
		InputSchema: objectSchema(map[string]Property{
			"onetime_id":               {Type: "string"},
			"next_charge_scheduled_at": {Type: "string"},
			"quantity":                 {Type: "integer"},
			"external_variant_id":      {Type: "string"},
			"price":                    {Type: "number"},
			"properties":               {Type: "array"},
		}, "onetime_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "onetime_id")
			if err != nil {
				return Operation{}, err
			}
			body := bodyFromArgs(args, "next_charge_scheduled_at", "quantity",
				"external_variant_id", "price", "properties")
			if err := requireAnyBodyField(body, "next_charge_scheduled_at, quantity, external_variant_id, price, properties"); err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodPut, Path: "/onetimes/" + id, Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "delete_onetime",
		Description: "Remove a one-time product addition from its upcoming delivery.",
		InputSchema: objectSchema(map[string]Property{
			"onetime_id": {Type: "string"},
		}, "onetime_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "onetime_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodDelete, Path: "/onetimes/" + id}, nil
		},
	})
}
