// Package capture runs the pipeline: build the request context, make
// one model round trip, materialize whatever came back.
package capture

import (
	"context"

	"github.com/marek/faf/internal/llm"
	"github.com/marek/faf/internal/record"
)

// Result is what one capture produced. Stored is set when a record
// was written. Reply carries the model's prose when it declined to
// pick a tool; nothing is persisted in that case.
type Result struct {
	Stored *record.Stored
	Reply  string
	Usage  llm.Usage
}

// Service holds the pieces of the pipeline. Stateless between calls
// and safe for concurrent use.
type Service struct {
	client      llm.Client
	store       *record.Materializer
	userName    string
	customRules string
}

func New(client llm.Client, store *record.Materializer, userName, customRules string) *Service {
	return &Service{
		client:      client,
		store:       store,
		userName:    userName,
		customRules: customRules,
	}
}

// Capture classifies raw free text into one action record.
func (s *Service) Capture(ctx context.Context, raw string) (*Result, error) {
	rc, err := buildContext(raw, s.userName, s.customRules)
	if err != nil {
		return nil, err
	}

	completion, err := s.client.Complete(ctx, rc.system, rc.input, llm.CaptureTools)
	if err != nil {
		return nil, err
	}

	if completion.ToolCall == nil {
		return &Result{Reply: completion.Content, Usage: completion.Usage}, nil
	}

	st, err := s.store.Store(rc.input, *completion.ToolCall)
	if err != nil {
		return nil, err
	}

	return &Result{Stored: st, Usage: completion.Usage}, nil
}
