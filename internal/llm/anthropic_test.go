package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newAnthTestClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewAnthropicClient("test-key", "", "claude-sonnet-4-20250514")
	c.baseURL = server.URL
	c.http = server.Client()
	return c
}

func anthJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		w.Write([]byte(body))
	}
}

func TestAnthropicComplete_ToolUse(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"model": "claude-sonnet-4-20250514",
		"content": [
			{"type": "tool_use", "id": "toolu_01", "name": "note_to_self", "input": {"message": "Buy milk"}}
		],
		"usage": {"input_tokens": 120, "output_tokens": 30}
	}`))

	got, err := c.Complete(context.Background(), "system", "Buy milk", CaptureTools)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.ToolCall == nil {
		t.Fatal("expected a tool call")
	}
	if got.ToolCall.Name != "note_to_self" {
		t.Errorf("tool name = %q", got.ToolCall.Name)
	}
	if got.ToolCall.ID != "toolu_01" {
		t.Errorf("tool id = %q", got.ToolCall.ID)
	}
	if got.ToolCall.Params["message"] != "Buy milk" {
		t.Errorf("params = %v", got.ToolCall.Params)
	}
	if got.Usage.PromptTokens != 120 || got.Usage.CompletionTokens != 30 || got.Usage.TotalTokens != 150 {
		t.Errorf("usage = %+v", got.Usage)
	}
	if got.Usage.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", got.Usage.Model)
	}
}

func TestAnthropicComplete_TextOnly(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"content": [{"type": "text", "text": "I cannot pick a tool for that."}],
		"usage": {"input_tokens": 10, "output_tokens": 8}
	}`))

	got, err := c.Complete(context.Background(), "system", "???", CaptureTools)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.ToolCall != nil {
		t.Errorf("expected no tool call, got %+v", got.ToolCall)
	}
	if got.Content != "I cannot pick a tool for that." {
		t.Errorf("content = %q", got.Content)
	}
}

func TestAnthropicComplete_ConcatenatesTextBlocks(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"content": [
			{"type": "text", "text": "Hello"},
			{"type": "text", "text": " there"}
		]
	}`))

	got, err := c.Complete(context.Background(), "system", "hi", CaptureTools)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != "Hello there" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestAnthropicComplete_FirstToolUseWins(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"content": [
			{"type": "tool_use", "id": "a", "name": "save_url", "input": {"url": "https://go.dev"}},
			{"type": "tool_use", "id": "b", "name": "note_to_self", "input": {"message": "second"}}
		]
	}`))

	got, err := c.Complete(context.Background(), "system", "https://go.dev", CaptureTools)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.ToolCall == nil || got.ToolCall.Name != "save_url" || got.ToolCall.ID != "a" {
		t.Errorf("expected first tool_use to win, got %+v", got.ToolCall)
	}
}

func TestAnthropicComplete_APIError(t *testing.T) {
	c := newAnthTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"error": {"type": "overloaded_error", "message": "Overloaded"}}`))
	})

	_, err := c.Complete(context.Background(), "system", "hi", CaptureTools)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Provider != "anthropic" {
		t.Errorf("provider = %q", perr.Provider)
	}
	if !strings.Contains(err.Error(), "529") {
		t.Errorf("error does not carry the status: %v", err)
	}
}

func TestAnthropicComplete_UnparseableBody(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`not json at all`))

	_, err := c.Complete(context.Background(), "system", "hi", CaptureTools)
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestAnthropicComplete_EmptyToolName(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"content": [{"type": "tool_use", "id": "x", "name": "", "input": {}}]
	}`))

	_, err := c.Complete(context.Background(), "system", "hi", CaptureTools)
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestAnthropicComplete_UnknownToolName(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"content": [{"type": "tool_use", "id": "x", "name": "delete_everything", "input": {}}]
	}`))

	_, err := c.Complete(context.Background(), "system", "hi", CaptureTools)
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if !strings.Contains(merr.Reason, "delete_everything") {
		t.Errorf("reason does not name the tool: %q", merr.Reason)
	}
}

func TestAnthropicComplete_ToolInputNotObject(t *testing.T) {
	c := newAnthTestClient(t, anthJSON(`{
		"content": [{"type": "tool_use", "id": "x", "name": "note_to_self", "input": [1, 2]}]
	}`))

	_, err := c.Complete(context.Background(), "system", "hi", CaptureTools)
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestAnthropicComplete_APIKeyHeaders(t *testing.T) {
	var gotKey, gotAuth, gotVersion string
	c := newAnthTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("anthropic-version")
		anthJSON(`{"content": []}`)(w, r)
	})

	if _, err := c.Complete(context.Background(), "system", "hi", CaptureTools); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotAuth != "" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
}

func TestAnthropicComplete_OAuthHeaders(t *testing.T) {
	var gotKey, gotAuth, gotBeta string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("anthropic-beta")
		anthJSON(`{"content": []}`)(w, r)
	}))
	defer server.Close()

	c := NewAnthropicClient("", "oauth-token", "")
	c.baseURL = server.URL
	c.http = server.Client()

	if _, err := c.Complete(context.Background(), "system", "hi", CaptureTools); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotAuth != "Bearer oauth-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBeta != "oauth-2025-04-20" {
		t.Errorf("anthropic-beta = %q", gotBeta)
	}
	if gotKey != "" {
		t.Errorf("unexpected X-Api-Key %q", gotKey)
	}
}

func TestAnthropicComplete_SendsCatalogAndMessages(t *testing.T) {
	var gotReq anthRequest
	c := newAnthTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		anthJSON(`{"content": []}`)(w, r)
	})

	if _, err := c.Complete(context.Background(), "the system prompt", "Buy milk", CaptureTools); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if len(gotReq.Tools) != len(CaptureTools) {
		t.Fatalf("expected %d tools on the wire, got %d", len(CaptureTools), len(gotReq.Tools))
	}
	for i, tool := range CaptureTools {
		if gotReq.Tools[i].Name != tool.Name {
			t.Errorf("tool %d = %q, want %q", i, gotReq.Tools[i].Name, tool.Name)
		}
	}
	if len(gotReq.System) != 1 || gotReq.System[0].Text != "the system prompt" {
		t.Errorf("system = %+v", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "Buy milk" || gotReq.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestNewAnthropicClient_DefaultModel(t *testing.T) {
	c := NewAnthropicClient("key", "", "")
	if c.model == "" {
		t.Error("expected a default model")
	}
}
