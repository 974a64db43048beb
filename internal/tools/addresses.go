package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerAddressTools() {
	r.register(Definition{
		Name:        "get_address",
		Description: "Get one of the customer's addresses by ID.",
		InputSchema: objectSchema(map[string]Property{
			"address_id": {Type: "string", Description: "Recharge address ID."},
		}, "address_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "address_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/addresses/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_addresses",
		Description: "List the customer's addresses.",
		InputSchema: objectSchema(map[string]Property{
			"limit": {Type: "integer"},
			"page":  {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/addresses",
				Query:  queryFromArgs(args, "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "create_address",
		Description: "Create a new shipping address for the customer.",
		InputSchema: objectSchema(map[string]Property{
			"address1":     {Type: "string", Description: "Street address line 1."},
			"address2":     {Type: "string"},
			"city":         {Type: "string"},
			"province":     {Type: "string", Description: "State or province."},
			"zip":          {Type: "string"},
			"country_code": {Type: "string", Description: "Two-letter country code."},
			"first_name":   {Type: "string"},
			"last_name":    {Type: "string"},
			"company":      {Type: "string"},
			"phone":        {Type: "string"},
		}, "address1", "city", "province", "zip", "country_code", "first_name", "last_name"),
		Bind: func(args gjson.Result) (Operation, error) {
			for _, key := range []string{"address1", "city", "province", "zip", "country_code", "first_name", "last_name"} {
				if _, err := requiredString(args, key); err != nil {
					return Operation{}, err
				}
			}
			body := bodyFromArgs(args, "address1", "address2", "city", "province",
				"zip", "country_code", "first_name", "last_name", "company", "phone")
			return Operation{
				Method: http.MethodPost,
				Path:   "/customers/{customer_id}/addresses",
				Body:   body,
			}, nil
		},
	})

	r.register(Definition{
		Name:        "update_address",
		Description: "Update fields on one of the customer's addresses.",
		InputSchema: objectSchema(map[string]Property{
			"address_id":   {Type: "string"},
			"address1":     {Type: "string"},
			"address2":     {Type: "string"},
			"city":         {Type: "string"},
			"province":     {Type: "string"},
			"zip":          {Type: "string"},
			"country_code": {Type: "string"},
			"first_name":   {Type: "string"},
			"last_name":    {Type: "string"},
			"company":      {Type: "string"},
			"phone":        {Type: "string"},
		}, "address_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "address_id")
			if err != nil {
				return Operation{}, err
			}
			body := bodyFromArgs(args, "address1", "address2", "city", "province",
				"zip", "country_code", "first_name", "last_name", "company", "phone")
			if err := requireAnyBodyField(body, "address1, address2, city, province, zip, country_code, first_name, last_name, company, phone"); err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodPut, Path: "/addresses/" + id, Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "delete_address",
		Description: "Delete one of the customer's addresses. Addresses with active subscriptions cannot be deleted.",
		InputSchema: objectSchema(map[string]Property{
			"address_id": {Type: "string"},
		}, "address_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "address_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodDelete, Path: "/addresses/" + id}, nil
		},
	})
}
