// Package mcp exposes the capture pipeline over the Model Context
// Protocol: one generic capture tool that runs the full pipeline, and
// one direct tool per catalog entry for callers that already know
// which action they want.
package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/viant/jsonrpc"
	mcpschema "github.com/viant/mcp-protocol/schema"

	"github.com/marek/faf/internal/capture"
	"github.com/marek/faf/internal/llm"
	"github.com/marek/faf/internal/record"
)

const captureToolName = "capture"

// Handler serves tools/list and tools/call. Stateless between calls;
// everything it needs is wired in at startup.
type Handler struct {
	capture *capture.Service
	store   *record.Materializer
}

func NewHandler(capture *capture.Service, store *record.Materializer) *Handler {
	return &Handler{capture: capture, store: store}
}

// ---------------- mcp-protocol/server.Operations ----------------

func (h *Handler) Initialize(_ context.Context, _ *mcpschema.InitializeRequestParams, _ *mcpschema.InitializeResult) {
}

func (h *Handler) ListResources(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.ListResourcesRequest]) (*mcpschema.ListResourcesResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("resources/list not implemented", nil)
}

func (h *Handler) ListResourceTemplates(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.ListResourceTemplatesRequest]) (*mcpschema.ListResourceTemplatesResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("resources/templates/list not implemented", nil)
}

func (h *Handler) ReadResource(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.ReadResourceRequest]) (*mcpschema.ReadResourceResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("resources/read not implemented", nil)
}

func (h *Handler) Subscribe(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.SubscribeRequest]) (*mcpschema.SubscribeResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("subscribe not implemented", nil)
}

func (h *Handler) Unsubscribe(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.UnsubscribeRequest]) (*mcpschema.UnsubscribeResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("unsubscribe not implemented", nil)
}

func (h *Handler) ListTools(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.ListToolsRequest]) (*mcpschema.ListToolsResult, *jsonrpc.Error) {
	tools := make([]mcpschema.Tool, 0, len(llm.CaptureTools)+1)

	captureDesc := "Capture free-form text: an LLM classifies it into one of the registered actions and the result is written as an action record."
	tools = append(tools, mcpschema.Tool{
		Name:        captureToolName,
		Description: &captureDesc,
		InputSchema: mcpschema.ToolInputSchema{
			Type: "object",
			Properties: mcpschema.ToolInputSchemaProperties{
				"text": {"type": "string", "description": "Free-form input to capture, exactly as the user typed it."},
			},
			Required: []string{"text"},
		},
	})

	for _, t := range llm.CaptureTools {
		desc := t.Description
		tools = append(tools, mcpschema.Tool{
			Name:        t.Name,
			Description: &desc,
			InputSchema: directInputSchema(t),
		})
	}

	return &mcpschema.ListToolsResult{Tools: tools}, nil
}

func (h *Handler) CallTool(ctx context.Context, req *jsonrpc.TypedRequest[*mcpschema.CallToolRequest]) (*mcpschema.CallToolResult, *jsonrpc.Error) {
	if req == nil || req.Request == nil {
		return nil, jsonrpc.NewInvalidRequest("missing request", nil)
	}
	name := strings.TrimSpace(req.Request.Params.Name)
	if name == "" {
		return nil, jsonrpc.NewInvalidRequest("missing tool name", nil)
	}

	args := req.Request.Params.Arguments

	if name == captureToolName {
		return h.callCapture(ctx, args), nil
	}
	if _, ok := llm.Find(name); !ok {
		return nil, mcpschema.NewUnknownTool(name)
	}
	return h.callDirect(name, args), nil
}

func (h *Handler) ListPrompts(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.ListPromptsRequest]) (*mcpschema.ListPromptsResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("prompts/list not implemented", nil)
}

func (h *Handler) GetPrompt(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.GetPromptRequest]) (*mcpschema.GetPromptResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("prompts/get not implemented", nil)
}

func (h *Handler) Complete(_ context.Context, _ *jsonrpc.TypedRequest[*mcpschema.CompleteRequest]) (*mcpschema.CompleteResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound("complete not implemented", nil)
}

// ---------------- mcp-protocol/server.Handler ----------------

func (h *Handler) OnNotification(_ context.Context, _ *jsonrpc.Notification) {}

func (h *Handler) Implements(method string) bool {
	switch method {
	case mcpschema.MethodToolsList, mcpschema.MethodToolsCall:
		return true
	default:
		return false
	}
}

// ---------------- tool execution ----------------

// callCapture runs the full pipeline on raw text.
func (h *Handler) callCapture(ctx context.Context, args map[string]interface{}) *mcpschema.CallToolResult {
	text, _ := args["text"].(string)
	res, err := h.capture.Capture(ctx, text)
	if err != nil {
		return toolError(err.Error())
	}
	if res.Stored == nil {
		// The model answered in prose; nothing was persisted.
		return toolSuccess(map[string]interface{}{"reply": res.Reply})
	}
	return storedResult(res.Stored)
}

// callDirect materializes one named action without a model round trip.
// The caller supplies the prompt for the envelope plus the tool's own
// parameters.
func (h *Handler) callDirect(name string, args map[string]interface{}) *mcpschema.CallToolResult {
	prompt, _ := args["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return toolError((&record.ValidationError{Command: name, Missing: []string{"prompt"}}).Error())
	}

	params := make(map[string]any, len(args))
	for k, v := range args {
		if k == "prompt" {
			continue
		}
		params[k] = v
	}

	// Direct callers skip the model and its instructions, so the
	// instruction-level rules are enforced here instead.
	switch name {
	case "save_url":
		if u, ok := params["url"].(string); ok {
			if err := record.CheckURL(u); err != nil {
				return toolError((&record.ValidationError{Command: name, Reason: err.Error()}).Error())
			}
		}
	case "follow_up_then":
		if d, ok := params["date"].(string); ok {
			if err := record.CheckDate(d); err != nil {
				return toolError((&record.ValidationError{Command: name, Reason: err.Error()}).Error())
			}
		}
	case "va_request":
		if err := record.CheckVAPrompt(prompt); err != nil {
			return toolError((&record.ValidationError{Command: name, Reason: err.Error()}).Error())
		}
	}

	st, err := h.store.Store(prompt, llm.ToolCall{Name: name, Params: params})
	if err != nil {
		return toolError(err.Error())
	}
	return storedResult(st)
}

// ---------------- helpers ----------------

func directInputSchema(t llm.ToolSpec) mcpschema.ToolInputSchema {
	props := make(mcpschema.ToolInputSchemaProperties, len(t.Properties)+1)
	props["prompt"] = map[string]interface{}{"type": "string", "description": "Full input provided by the user, exactly as it was typed."}
	for k, v := range t.Properties {
		if m, ok := v.(map[string]any); ok {
			props[k] = m
		} else {
			props[k] = map[string]interface{}{}
		}
	}
	return mcpschema.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"prompt"}, t.Required...),
	}
}

func storedResult(st *record.Stored) *mcpschema.CallToolResult {
	return toolSuccess(map[string]interface{}{
		"prompt":  st.Record.Prompt,
		"command": st.Record.Command,
		"payload": st.Record.Payload,
		"path":    st.Path,
	})
}

func toolSuccess(structured map[string]interface{}) *mcpschema.CallToolResult {
	text, _ := json.Marshal(structured) // simple maps; marshal cannot fail
	return &mcpschema.CallToolResult{
		StructuredContent: structured,
		Content:           []mcpschema.CallToolResultContentElem{{Type: "text", Text: string(text)}},
	}
}

func toolError(msg string) *mcpschema.CallToolResult {
	isErr := true
	return &mcpschema.CallToolResult{
		IsError: &isErr,
		Content: []mcpschema.CallToolResultContentElem{{Type: "text", Text: msg}},
	}
}
