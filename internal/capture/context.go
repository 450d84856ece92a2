package capture

import (
	"errors"
	"strings"

	"github.com/marek/faf/internal/llm"
)

// ErrEmptyInput rejects blank captures before any network traffic.
var ErrEmptyInput = errors.New("input is empty")

// requestContext is one invocation's assembled model input. Built
// once, sent once, discarded.
type requestContext struct {
	system string
	input  string
}

func buildContext(raw, userName, customRules string) (requestContext, error) {
	if strings.TrimSpace(raw) == "" {
		return requestContext{}, ErrEmptyInput
	}
	return requestContext{
		system: llm.BuildSystemPrompt(userName, customRules),
		input:  raw,
	}, nil
}
