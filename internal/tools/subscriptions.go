package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerSubscriptionTools() {
	r.register(Definition{
		Name:        "get_subscription",
		Description: "Get one subscription by ID.",
		InputSchema: objectSchema(map[string]Property{
			"subscription_id": {Type: "string", Description: "Recharge subscription ID."},
		}, "subscription_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/subscriptions/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_subscriptions",
		Description: "List the customer's subscriptions.",
		InputSchema: objectSchema(map[string]Property{
			"status": {Type: "string", Description: "Filter by status.", Enum: []string{"active", "cancelled", "expired"}},
			"limit":  {Type: "integer", Description: "Page size, 1-250."},
			"page":   {Type: "integer", Description: "Page number."},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/subscriptions",
				Query:  queryFromArgs(args, "status", "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "create_subscription",
		Description: "Create a subscription on one of the customer's addresses.",
		InputSchema: objectSchema(map[string]Property{
			"address_id":                {Type: "string", Description: "Address the subscription ships to."},
			"next_charge_scheduled_at":  {Type: "string", Description: "First charge date, YYYY-MM-DD."},
			"order_interval_unit":       {Type: "string", Enum: []string{"day", "week", "month"}},
			"order_interval_frequency":  {Type: "integer", Description: "Deliveries every N interval units."},
			"charge_interval_frequency": {Type: "integer", Description: "Charges every N interval units."},
			"quantity":                  {Type: "integer"},
			"external_variant_id":       {Type: "string", Description: "External platform variant ID."},
			"external_product_id":       {Type: "string"},
			"price":                     {Type: "number"},
			"properties":                {Type: "array", Description: "Line item properties, [{name, value}]."},
			"expire_after_specific_number_of_charges": {Type: "integer"},
		}, "address_id", "next_charge_scheduled_at", "order_interval_unit",
			"order_interval_frequency", "charge_interval_frequency", "quantity", "external_variant_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			for _, key := range []string{
				"address_id", "next_charge_scheduled_at", "order_interval_unit",
				"order_interval_frequency", "charge_interval_frequency", "quantity", "external_variant_id",
			} {
				if !args.Get(key).Exists() {
					return Operation{}, missingArg(key)
				}
			}
			body := bodyFromArgs(args,
				"address_id", "next_charge_scheduled_at", "order_interval_unit",
				"order_interval_frequency", "charge_interval_frequency", "quantity",
				"external_variant_id", "external_product_id", "price", "properties",
				"expire_after_specific_number_of_charges")
			return Operation{Method: http.MethodPost, Path: "/subscriptions", Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "update_subscription",
		Description: "Update subscription fields such as quantity or delivery schedule.",
		InputSchema: objectSchema(map[string]Property{
			"subscription_id":           {Type: "string"},
			"quantity":                  {Type: "integer"},
			"order_interval_unit":       {Type: "string", Enum: []string{"day", "week", "month"}},
			"order_interval_frequency":  {Type: "integer"},
			"charge_interval_frequency": {Type: "integer"},
			"price":                     {Type: "number"},
			"properties":                {Type: "array"},
		}, "subscription_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			body := bodyFromArgs(args, "quantity", "order_interval_unit",
				"order_interval_frequency", "charge_interval_frequency", "price", "properties")
			if err := requireAnyBodyField(body, "quantity, order_interval_unit, order_interval_frequency, charge_interval_frequency, price, properties"); err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodPut, Path: "/subscriptions/" + id, Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "swap_subscription_product",
		Description: "Swap the product on a subscription to a different external variant.",
		InputSchema: objectSchema(map[string]Property{
			"subscription_id":     {Type: "string"},
			"external_variant_id": {Type: "string", Description: "Variant to swap to."},
			"external_product_id": {Type: "string"},
			"quantity":            {Type: "integer"},
		}, "subscription_id", "external_variant_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			if _, err := requiredString(args, "external_variant_id"); err != nil {
				return Operation{}, err
			}
			body := bodyFromArgs(args, "external_variant_id", "external_product_id", "quantity")
			return Operation{Method: http.MethodPut, Path: "/subscriptions/" + id, Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "cancel_subscription",
		Description: "Cancel a subscription. The subscription can be reactivated later.",
		InputSchema: objectSchema(map[string]Property{
			"subscription_id":              {Type: "string"},
			"cancellation_reason":          {Type: "string", Description: "Why the customer is cancelling."},
			"cancellation_reason_comments": {Type: "string"},
			"send_email":                   {Type: "boolean", Description: "Send the cancellation notification email."},
		}, "subscription_id", "cancellation_reason"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			if _, err := requiredString(args, "cancellation_reason"); err != nil {
				return Operation{}, err
			}
			body := bodyFromArgs(args, "cancellation_reason", "cancellation_reason_comments", "send_email")
			return Operation{Method: http.MethodPost, Path: "/subscriptions/" + id + "/cancel", Body: body}, nil
		},
	})

	r.register(Definition{
		Name:        "activate_subscription",
		Description: "Reactivate a cancelled subscription.",
		InputSchema: objectSchema(map[string]Property{
			"subscription_id": {Type: "string"},
		}, "subscription_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/subscriptions/" + id + "/activate",
				Body:   map[string]interface{}{},
			}, nil
		},
	})

	r.register(Definition{
		Name:        "set_next_charge_date",
		Description: "Move a subscription's next charge to a specific date.",
		InputSchema: objectSchema(map[string]Property{
			"subscription_id": {Type: "string"},
			"date":            {Type: "string", Description: "New charge date, YYYY-MM-DD."},
		}, "subscription_id", "date"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "subscription_id")
			if err != nil {
				return Operation{}, err
			}
			date, err := requiredString(args, "date")
			if err != nil {
				return Operation{}, err
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/subscriptions/" + id + "/set_next_charge_date",
				Body:   map[string]interface{}{"date": date},
			}, nil
		},
	})
}
