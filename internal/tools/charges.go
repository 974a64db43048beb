package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerChargeTools() {
	r.register(Definition{
		Name:        "get_charge",
		Description: "Get one charge by ID.",
		InputSchema: objectSchema(map[string]Property{
			"charge_id": {Type: "string", Description: "Recharge charge ID."},
		}, "charge_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "charge_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/charges/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_charges",
		Description: "List the customer's charges, including upcoming ones.",
		InputSchema: objectSchema(map[string]Property{
			"status": {Type: "string", Enum: []string{"success", "queued", "error", "refunded", "skipped"}},
			"limit":  {Type: "integer"},
			"page":   {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/charges",
				Query:  queryFromArgs(args, "status", "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "apply_discount_to_charge",
		Description: "Apply a discount code to an upcoming charge.",
		InputSchema: objectSchema(map[string]Property{
			"charge_id":     {Type: "string"},
			"discount_code": {Type: "string", Description: "Discount code to apply."},
		}, "charge_id", "discount_code"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "charge_id")
			if err != nil {
				return Operation{}, err
			}
			code, err := requiredString(args, "discount_code")
			if err != nil {
				return Operation{}, err
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/charges/" + id + "/apply_discount",
				Body:   map[string]interface{}{"discount_code": code},
			}, nil
		},
	})

	r.register(Definition{
		Name:        "remove_discount_from_charge",
		Description: "Remove the discount from an upcoming charge.",
		InputSchema: objectSchema(map[string]Property{
			"charge_id": {Type: "string"},
		}, "charge_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "charge_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/charges/" + id + "/remove_discount",
				Body:   map[string]interface{}{},
			}, nil
		},
	})

	r.register(Definition{
		Name:        "skip_charge",
		Description: "Skip an upcoming charge for one subscription.",
		InputSchema: objectSchema(map[string]Property{
			"charge_id":       {Type: "string"},
			"subscription_id": {Type: "string", Description: "Subscription whose item is skipped."},
		}, "charge_id", "subscription_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "charge_id")
			if err != nil {
				return Operation{}, err
			}
			subID, err := requiredString(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/charges/" + id + "/skip",
				Body:   map[string]interface{}{"subscription_id": subID},
			}, nil
		},
	})

	r.register(Definition{
		Name:        "unskip_charge",
		Description: "Restore a previously skipped charge for one subscription.",
		InputSchema: objectSchema(map[string]Property{
			"charge_id":       {Type: "string"},
			"subscription_id": {Type: "string"},
		}, "charge_id", "subscription_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "charge_id")
			if err != nil {
				return Operation{}, err
			}
			subID, err := requiredString(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/charges/" + id + "/unskip",
				Body:   map[string]interface{}{"subscription_id": subID},
			}, nil
		},
	})
}
