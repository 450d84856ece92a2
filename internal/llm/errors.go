package llm

import "fmt"

// ProviderError wraps a transport or API failure from an LLM provider.
// The dispatch made it onto the wire; the provider did not deliver.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError means the provider answered but the answer
// cannot be read as either prose or a usable tool call.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}
