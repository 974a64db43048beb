package tools

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"recharge-mcp-go/internal/errors"
)

func missingArg(key string) error {
	return errors.Newf(errors.KindValidation, "missing required argument %q", key)
}

// requiredString extracts a non-blank string argument.
func requiredString(args gjson.Result, key string) (string, error) {
	v := strings.TrimSpace(args.Get(key).String())
	if v == "" {
		return "", missingArg(key)
	}
	return v, nil
}

// pathID extracts a required argument destined for a URL path segment.
func pathID(args gjson.Result, key string) (string, error) {
	v, err := requiredString(args, key)
	if err != nil {
		return "", err
	}
	return url.PathEscape(v), nil
}

// bodyFromArgs copies the listed keys into a request body, skipping
// absent ones. Values pass through as-is so nested objects and arrays
// survive.
func bodyFromArgs(args gjson.Result, keys ...string) map[string]interface{} {
	body := make(map[string]interface{})
	for _, key := range keys {
		if v := args.Get(key); v.Exists() {
			body[key] = v.Value()
		}
	}
	return body
}

// requireAnyBodyField ensures an update carries at least one field.
func requireAnyBodyField(body map[string]interface{}, hint string) error {
	if len(body) == 0 {
		return errors.Newf(errors.KindValidation, "nothing to update: provide at least one of %s", hint)
	}
	return nil
}

// queryFromArgs copies the listed keys into URL query parameters,
// skipping absent or blank ones. Returns nil when nothing was set.
func queryFromArgs(args gjson.Result, keys ...string) url.Values {
	q := url.Values{}
	for _, key := range keys {
		if v := args.Get(key); v.Exists() && strings.TrimSpace(v.String()) != "" {
			q.Set(key, v.String())
		}
	}
	if len(q) == 0 {
		return nil
	}
	return q
}
