// Package tools declares the MCP tool catalog for the Recharge
// storefront surface and dispatches calls through the credential
// broker. Every tool shares the identity arguments (customer_id,
// customer_email, session_token); the rest of its schema describes the
// storefront operation it maps to.
package tools

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/identity"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/monitoring/tracing"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

// Operation is what a tool binding produces: either one Recharge API
// call, or a Local function for administrative tools that never leave
// the process.
type Operation struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Local  func(ctx context.Context) (interface{}, error)
}

// Definition describes one tool: its public name and schema plus the
// binding from arguments to an Operation.
type Definition struct {
	Name        string
	Description string
	InputSchema Schema
	Bind        func(args gjson.Result) (Operation, error)
}

// ContentBlock is one MCP content item. Only text blocks are produced.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is an MCP tool result. Failures set IsError and carry the
// error message with a remediation hint instead of becoming protocol
// errors.
type Result struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Registry holds the catalog in registration order and runs dispatches.
type Registry struct {
	broker  *upstream.Broker
	tracker *usage.Tracker
	defs    map[string]*Definition
	order   []string
}

// NewRegistry builds the full catalog over the broker. The tracker may
// be nil when usage accounting is not wanted (tests).
func NewRegistry(broker *upstream.Broker, tracker *usage.Tracker) *Registry {
	r := &Registry{
		broker:  broker,
		tracker: tracker,
		defs:    make(map[string]*Definition),
	}
	r.registerCustomerTools()
	r.registerSubscriptionTools()
	r.registerAddressTools()
	r.registerChargeTools()
	r.registerOnetimeTools()
	r.registerBundleTools()
	r.registerDiscountTools()
	r.registerPaymentTools()
	r.registerOrderTools()
	r.registerAdminTools()
	return r
}

// register adds a definition. Duplicate names are a programming error.
func (r *Registry) register(def Definition) {
	if _, exists := r.defs[def.Name]; exists {
		panic("tools: duplicate registration of " + def.Name)
	}
	d := def
	r.defs[def.Name] = &d
	r.order = append(r.order, def.Name)
}

// Get returns a tool definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Len reports the catalog size.
func (r *Registry) Len() int { return len(r.order) }

// Dispatch runs one tool call. Unknown tools return an error (the
// protocol layer maps it to invalid params); everything else, including
// upstream failures, comes back as a Result.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) (*Result, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, errors.Newf(errors.KindNotFound, "unknown tool %q", name)
	}

	spanCtx, span := tracing.StartSpan(ctx, "tools", "mcp.tools.call",
		trace.WithAttributes(attribute.String("mcp.tool", name)))
	defer span.End()
	ctx = spanCtx

	args := gjson.ParseBytes(rawArgs)
	desc := identity.Descriptor{
		SessionToken:  args.Get("session_token").String(),
		CustomerID:    args.Get("customer_id").String(),
		CustomerEmail: args.Get("customer_email").String(),
	}

	start := time.Now()
	payload, err := r.run(ctx, def, args, desc)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	monitoring.ToolCallsTotal.WithLabelValues(name, outcome).Inc()
	monitoring.ToolCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if r.tracker != nil {
		r.tracker.Record(name, err == nil, elapsed)
	}

	if err != nil {
		return errorResult(err), nil
	}
	return &Result{Content: []ContentBlock{{Type: "text", Text: string(payload)}}}, nil
}

func (r *Registry) run(ctx context.Context, def *Definition, args gjson.Result, desc identity.Descriptor) ([]byte, error) {
	op, err := def.Bind(args)
	if err != nil {
		return nil, err
	}
	if op.Local != nil {
		out, lerr := op.Local(ctx)
		if lerr != nil {
			return nil, lerr
		}
		payload, merr := json.Marshal(out)
		if merr != nil {
			return nil, errors.New(errors.KindAPI, "could not serialize tool result").WithCause(merr)
		}
		return payload, nil
	}
	return r.broker.Execute(ctx, op.Method, op.Path, op.Body, op.Query, desc)
}

func errorResult(err error) *Result {
	text := err.Error()
	if de, ok := errors.AsDomain(err); ok {
		if hint := de.RemediationHint(); hint != "" {
			text += "\nHint: " + hint
		}
	}
	return &Result{
		IsError: true,
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}
