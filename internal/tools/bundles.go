package tools

import (
	"net/http"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerBundleTools() {
	r.register(Definition{
		Name:        "get_bundle",
		Description: "Get one bundle by ID.",
		InputSchema: objectSchema(map[string]Property{
			"bundle_id": {Type: "string", Description: "Recharge bundle ID."},
		}, "bundle_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "bundle_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/bundles/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_bundles",
		Description: "List the customer's bundles.",
		InputSchema: objectSchema(map[string]Property{
			"limit": {Type: "integer"},
			"page":  {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/bundles",
				Query:  queryFromArgs(args, "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "get_bundle_selection",
		Description: "Get one bundle selection by ID.",
		InputSchema: objectSchema(map[string]Property{
			"bundle_selection_id": {Type: "string"},
		}, "bundle_selection_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "bundle_selection_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodGet, Path: "/bundle_selections/" + id}, nil
		},
	})

	r.register(Definition{
		Name:        "list_bundle_selections",
		Description: "List bundle selections, optionally filtered to one bundle.",
		InputSchema: objectSchema(map[string]Property{
			"bundle_id": {Type: "string", Description: "Restrict to selections of this bundle."},
			"limit":     {Type: "integer"},
			"page":      {Type: "integer"},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			return Operation{
				Method: http.MethodGet,
				Path:   "/bundle_selections",
				Query:  queryFromArgs(args, "bundle_id", "limit", "page"),
			}, nil
		},
	})

	r.register(Definition{
		Name:        "create_bundle_selection",
		Description: "Create a bundle selection: the chosen items inside a bundle subscription.",
		InputSchema: objectSchema(map[string]Property{
			"purchase_item_id": {Type: "string", Description: "Subscription (purchase item) the selection belongs to."},
			"items":            {Type: "array", Description: "Selected items: external_product_id, external_variant_id, quantity."},
		}, "purchase_item_id", "items"),
		Bind: func(args gjson.Result) (Operation, error) {
			itemID, err := requiredString(args, "purchase_item_id")
			if err != nil {
				return Operation{}, err
			}
			items := args.Get("items")
			if !items.Exists() || !items.IsArray() {
				return Operation{}, missingArg("items")
			}
			return Operation{
				Method: http.MethodPost,
				Path:   "/bundle_selections",
				Body: map[string]interface{}{
					"purchase_item_id": itemID,
					"items":            items.Value(),
				},
			}, nil
		},
	})

	r.register(Definition{
		Name:        "update_bundle_selection",
		Description: "Replace the items of an existing bundle selection.",
		InputSchema: objectSchema(map[string]Property{
			"bundle_selection_id": {Type: "string"},
			"items":               {Type: "array", Description: "New selected items for the bundle."},
		}, "bundle_selection_id", "items"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "bundle_selection_id")
			if err != nil {
				return Operation{}, err
			}
			items := args.Get("items")
			if !items.Exists() || !items.IsArray() {
				return Operation{}, missingArg("items")
			}
			return Operation{
				Method: http.MethodPut,
				Path:   "/bundle_selections/" + id,
				Body:   map[string]interface{}{"items": items.Value()},
			}, nil
		},
	})

	r.register(Definition{
		Name:        "delete_bundle_selection",
		Description: "Delete a bundle selection.",
		InputSchema: objectSchema(map[string]Property{
			"bundle_selection_id": {Type: "string"},
		}, "bundle_selection_id"),
		Bind: func(args gjson.Result) (Operation, error) {
			id, err := pathID(args, "bundle_selection_id")
			if err != nil {
				return Operation{}, err
			}
			return Operation{Method: http.MethodDelete, Path: "/bundle_selections/" + id}, nil
		},
	})
}
