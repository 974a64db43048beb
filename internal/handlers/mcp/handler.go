// Package mcp implements the Model Context Protocol endpoint: JSON-RPC
// 2.0 over a single HTTP POST. Tool failures come back as isError tool
// results; JSON-RPC errors are reserved for protocol-level problems.
package mcp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/logging"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/tools"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// Handler serves the MCP endpoint over the tool registry.
type Handler struct {
	registry *tools.Registry
}

// NewHandler builds a Handler.
func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{registry: registry}
}

// Handle processes one JSON-RPC request on POST /mcp.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, codeParseError, "could not read request body"))
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, codeParseError, "request is not valid JSON"))
		return
	}
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		c.JSON(http.StatusOK, errorResponse(req.ID, codeInvalidRequest, "expected a JSON-RPC 2.0 request with a method"))
		return
	}

	monitoring.MCPRequestsTotal.WithLabelValues(req.Method).Inc()

	// Notifications carry no id and get no response body.
	if isNotification(req) {
		if strings.HasPrefix(req.Method, "notifications/") {
			c.Status(http.StatusAccepted)
			return
		}
		logging.WithReq(c, log.Fields{"rpc_method": req.Method}).
			Debug("dropping non-notification request without id")
		c.Status(http.StatusAccepted)
		return
	}

	switch req.Method {
	case "initialize":
		c.JSON(http.StatusOK, resultResponse(req.ID, h.initializeResult()))
	case "ping":
		c.JSON(http.StatusOK, resultResponse(req.ID, map[string]interface{}{}))
	case "tools/list":
		c.JSON(http.StatusOK, resultResponse(req.ID, h.listResult()))
	case "tools/call":
		c.JSON(http.StatusOK, h.callTool(c, req))
	default:
		c.JSON(http.StatusOK, errorResponse(req.ID, codeMethodNotFound, "unknown method "+req.Method))
	}
}

func isNotification(req rpcRequest) bool {
	return len(req.ID) == 0 || string(req.ID) == "null"
}

func (h *Handler) initializeResult() map[string]interface{} {
	return map[string]interface{}{
		"protocolVersion": constants.MCPProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{"listChanged": false},
		},
		"serverInfo": map[string]interface{}{
			"name":    constants.MCPServerName,
			"version": constants.Version,
		},
	}
}

type toolDescriptor struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InputSchema tools.Schema `json:"inputSchema"`
}

func (h *Handler) listResult() map[string]interface{} {
	defs := h.registry.List()
	out := make([]toolDescriptor, 0, len(defs))
	for _, def := range defs {
		out = append(out, toolDescriptor{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return map[string]interface{}{"tools": out}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (h *Handler) callTool(c *gin.Context, req rpcRequest) rpcResponse {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil || strings.TrimSpace(params.Name) == "" {
		return errorResponse(req.ID, codeInvalidParams, "tools/call needs a tool name")
	}
	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	result, err := h.registry.Dispatch(c.Request.Context(), params.Name, args)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			return errorResponse(req.ID, codeInvalidParams, err.Error())
		}
		logging.WithReq(c, log.Fields{"tool": params.Name}).
			WithError(err).Error("tool dispatch failed")
		return errorResponse(req.ID, codeInternalError, "internal error running tool")
	}
	return resultResponse(req.ID, result)
}

func resultResponse(id json.RawMessage, result interface{}) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) rpcResponse {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}
