package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

type OpenAIClient struct {
	client openai.Client
	name   string // provider label for errors: "openai" or "ollama"
	model  string
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	name := "openai"
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
		name = "ollama"
	}
	client := openai.NewClient(opts...)
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIClient{client: client, name: name, model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string, tools []ToolSpec) (*Completion, error) {
	oaiTools := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, t := range tools {
		oaiTools[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.Parameters()),
		})
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Tools: oaiTools,
	})
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Reason: "response has no choices"}
	}

	choice := resp.Choices[0]
	result := &Completion{
		Content: choice.Message.Content,
		Usage: Usage{
			Model:            resp.Model,
			Created:          resp.Created,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(choice.Message.ToolCalls) == 0 {
		return result, nil
	}

	// Several tool calls in one answer: the first one wins.
	ftc := choice.Message.ToolCalls[0].AsFunction()
	if ftc.Function.Name == "" {
		return nil, &MalformedResponseError{Reason: "tool call with empty name"}
	}
	if !hasTool(tools, ftc.Function.Name) {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("tool %q is not in the catalog", ftc.Function.Name)}
	}
	raw := ftc.Function.Arguments
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, &MalformedResponseError{Reason: "tool arguments are not a JSON object", Raw: raw}
	}
	params := map[string]any{}
	_ = json.Unmarshal([]byte(raw), &params) // shape checked above

	result.ToolCall = &ToolCall{
		ID:     ftc.ID,
		Name:   ftc.Function.Name,
		Params: params,
	}
	return result, nil
}

func hasTool(tools []ToolSpec, name string) bool {
	for _, t := range tools {
		if t.Name == name {
			return true
		}
	}
	return false
}
