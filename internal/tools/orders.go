package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerOrderTools() {
	r.register(Definition{
		Name:        "get_order",
		Description: "Get one order by ID.",
		InputSchema: objectSchema(map[string]Property{
			"order_id": {Type: "string", Description: "Recharge order ID."},
		}, "order_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "order_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/orders/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_orders",
		Description: "List the customer's orders.",
		InputSchema: objectSchema(map[string]Property{
			"status": {Type: "string", Enum: []string{"success", "queued", "error", "cancelled"}},
			"limit":  {Type: "integer"},
			"page":   {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/orders",
				Query:  queryFromArgs(args, "status", "limit", "page"),
			}, nil
		},
	})
}
