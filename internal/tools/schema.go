package tools

// Property is one field of a tool's argument schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema is the JSON Schema shape advertised through tools/list.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// identityProperties are shared by every tool; they select who the call
// authenticates as.
func identityProperties() map[string]Property {
	return map[string]Property{
		"customer_id": {
			Type:        "string",
			Description: "Recharge customer ID to act as. Takes precedence over customer_email.",
		},
		"customer_email": {
			Type:        "string",
			Description: "Customer email to act as; resolved to a customer ID on first use.",
		},
		"session_token": {
			Type:        "string",
			Description: "Explicit session token. Bypasses cached credentials; no automatic refresh on expiry.",
		},
	}
}

// objectSchema merges tool-specific properties over the shared identity
// properties.
func objectSchema(props map[string]Property, required ...string) Schema {
	merged := identityProperties()
	for name, prop := range props {
		merged[name] = prop
	}
	return Schema{
		Type:       "object",
		Properties: merged,
		Required:   required,
	}
}
