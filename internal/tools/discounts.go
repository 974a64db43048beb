package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerDiscountTools() {
	r.register(Definition{
		Name:        "get_discount",
		Description: "Get one discount by ID.",
		InputSchema: objectSchema(map[string]Property{
			"discount_id": {Type: "string", Description: "Recharge discount ID."},
		}, "discount_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "discount_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/discounts/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_discounts",
		Description: "List discounts visible to the customer.",
		InputSchema: objectSchema(map[string]Property{
			"discount_code": {Type: "string", Description: "Filter by exact discount code."},
			"limit":         {Type: "integer"},
			"page":          {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/discounts",
				Query:  queryFromArgs(args, "discount_code", "limit", "page"),
			}, nil
		},
	})
}
