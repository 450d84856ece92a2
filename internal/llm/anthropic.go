package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

type AnthropicClient struct {
	apiKey    string
	authToken string
	model     string
	baseURL   string
	http      *http.Client
}

func NewAnthropicClient(apiKey, authToken, model string) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicClient{
		apiKey:    apiKey,
		authToken: authToken,
		model:     model,
		baseURL:   anthropicAPI,
		http:      &http.Client{},
	}
}

// Raw API request/response types

type anthRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    []anthText    `json:"system,omitempty"`
	Messages  []anthMessage `json:"messages"`
	Tools     []anthTool    `json:"tools,omitempty"`
}

type anthText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthResponse struct {
	Model   string      `json:"model"`
	Content []anthBlock `json:"content"`
	Usage   struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) Complete(ctx context.Context, system, user string, tools []ToolSpec) (*Completion, error) {
	anthTools := make([]anthTool, len(tools))
	for i, t := range tools {
		anthTools[i] = anthTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters(),
		}
	}

	reqBody := anthRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    []anthText{{Type: "text", Text: system}},
		Messages:  []anthMessage{{Role: "user", Content: user}},
		Tools:     anthTools,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("User-Agent", "faf/1.0")

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
		req.Header.Set("anthropic-beta", "oauth-2025-04-20")
	} else if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != 200 {
		return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("%s %s", resp.Status, string(respBody))}
	}

	var anthResp anthResponse
	if err := json.Unmarshal(respBody, &anthResp); err != nil {
		return nil, &MalformedResponseError{Reason: "parsing response: " + err.Error(), Raw: string(respBody)}
	}

	result := &Completion{
		Usage: Usage{
			Model:            anthResp.Model,
			PromptTokens:     anthResp.Usage.InputTokens,
			CompletionTokens: anthResp.Usage.OutputTokens,
			TotalTokens:      anthResp.Usage.InputTokens + anthResp.Usage.OutputTokens,
		},
	}

	for _, block := range anthResp.Content {
		switch block.Type {
		case "text":
			result.Content += block.Text
		case "tool_use":
			if result.ToolCall != nil {
				continue // first tool_use wins
			}
			if block.Name == "" {
				return nil, &MalformedResponseError{Reason: "tool_use block with empty name"}
			}
			if !hasTool(tools, block.Name) {
				return nil, &MalformedResponseError{Reason: fmt.Sprintf("tool %q is not in the catalog", block.Name)}
			}
			params := map[string]any{}
			if len(block.Input) > 0 {
				if !gjson.ValidBytes(block.Input) || !gjson.ParseBytes(block.Input).IsObject() {
					return nil, &MalformedResponseError{Reason: "tool input is not a JSON object", Raw: string(block.Input)}
				}
				_ = json.Unmarshal(block.Input, &params) // shape checked above
			}
			result.ToolCall = &ToolCall{
				ID:     block.ID,
				Name:   block.Name,
				Params: params,
			}
		}
	}

	return result, nil
}
