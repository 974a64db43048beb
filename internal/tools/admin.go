package tools

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/session"
	"recharge-mcp-go/internal/upstream"
)

// Administrative tools run locally against the credential broker; they
// never hit the Recharge API and ignore the identity arguments.
func (r *Registry) registerAdminTools() {
	r.register(Definition{
		Name:        "credential_stats",
		Description: "Report cached session credential statistics: entry count, email mappings, and entry ages.",
		InputSchema: objectSchema(nil),
		Bind: func(gjson.Result) (Operation, error) {
			return Operation{Local: func(context.Context) (interface{}, error) {
				return r.broker.CredentialStats(), nil
			}}, nil
		},
	})

	r.register(Definition{
		Name:        "purge_credentials",
		Description: "Remove cached session credentials. Select all entries, entries older than a given age, one customer, or one email.",
		InputSchema: objectSchema(map[string]Property{
			"all":                {Type: "boolean", Description: "Purge every cached credential."},
			"older_than_minutes": {Type: "integer", Description: "Purge entries created more than this many minutes ago."},
			"purge_customer_id":  {Type: "string", Description: "Purge one customer's credential."},
			"purge_email":        {Type: "string", Description: "Purge the credential mapped to this email."},
			"reason":             {Type: "string", Description: "Free-form audit note recorded with the purge."},
		}),
		Bind: func(args gjson.Result) (Operation, error) {
			req := upstream.PurgeRequest{
				All:              args.Get("all").Bool(),
				OlderThanMinutes: int(args.Get("older_than_minutes").Int()),
				CustomerID:       strings.TrimSpace(args.Get("purge_customer_id").String()),
				Email:            strings.TrimSpace(args.Get("purge_email").String()),
				Reason:           strings.TrimSpace(args.Get("reason").String()),
			}
			return Operation{Local: func(ctx context.Context) (interface{}, error) {
				res, err := r.broker.PurgeCredentials(ctx, req)
				if err != nil {
					return nil, err
				}
				return res, nil
			}}, nil
		},
	})

	r.register(Definition{
		Name:        "validate_session_token",
		Description: "Check whether a session token has a plausible shape without calling the Recharge API.",
		InputSchema: objectSchema(nil, "session_token"),
		Bind: func(args gjson.Result) (Operation, error) {
			raw := args.Get("session_token").String()
			if strings.TrimSpace(raw) == "" {
				return Operation{}, missingArg("session_token")
			}
			return Operation{Local: func(context.Context) (interface{}, error) {
				trimmed, err := session.ValidateToken(raw)
				if err != nil {
					reason := err.Error()
					if de, ok := errors.AsDomain(err); ok {
						reason = de.Message
					}
					return map[string]interface{}{"valid": false, "reason": reason}, nil
				}
				return map[string]interface{}{"valid": true, "length": len(trimmed)}, nil
			}}, nil
		},
	})
}
