package llm

import "context"

// ToolCall is the model's selection of one capture tool.
type ToolCall struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Usage records what one completion consumed. It is logged for the
// curious and never written into an action record.
type Usage struct {
	Model            string
	Created          int64
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completion is the outcome of one dispatch round. ToolCall is nil when
// the model answered in prose instead of picking a tool; Content then
// carries the reply.
type Completion struct {
	ToolCall *ToolCall
	Content  string
	Usage    Usage
}

// Client is the interface all LLM providers implement. Exactly one
// round trip per call: no retries, no streaming.
type Client interface {
	Complete(ctx context.Context, system, user string, tools []ToolSpec) (*Completion, error)
}
