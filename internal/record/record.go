// Package record turns validated tool calls into action-record files.
// One file per call, three top-level keys, written atomically so the
// drop directory never shows a half-finished record to whatever is
// watching it.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/marek/faf/internal/llm"
)

// ActionRecord is the persisted envelope. Prompt is the raw input as
// typed; Command is the tool name; Payload is the tool arguments.
// Nothing else goes in.
type ActionRecord struct {
	Prompt  string         `json:"prompt"`
	Command string         `json:"command"`
	Payload map[string]any `json:"payload"`
}

// Stored pairs a persisted record with the absolute path it landed at.
type Stored struct {
	Record ActionRecord
	Path   string
	Size   int // encoded bytes on disk
}

// Materializer validates tool calls against the catalog and writes
// one record file each. Construct once at startup; safe for
// concurrent use.
type Materializer struct {
	dir     string
	specs   []llm.ToolSpec
	schemas map[string]*jsonschema.Schema

	now    func() time.Time // swapped in tests
	suffix func() string
}

// NewMaterializer compiles one argument validator per tool up front,
// so a bad schema fails at startup rather than mid-capture.
func NewMaterializer(dir string, specs []llm.ToolSpec) (*Materializer, error) {
	m := &Materializer{
		dir:     dir,
		specs:   specs,
		schemas: make(map[string]*jsonschema.Schema, len(specs)),
		now:     time.Now,
		suffix:  shortID,
	}
	for _, t := range specs {
		raw, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("encoding %s schema: %w", t.Name, err)
		}
		schema, err := jsonschema.CompileString(t.Name+".json", string(raw))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", t.Name, err)
		}
		m.schemas[t.Name] = schema
	}
	return m, nil
}

// Store validates one tool call and writes its action record. Nothing
// is written when validation fails.
func (m *Materializer) Store(prompt string, call llm.ToolCall) (*Stored, error) {
	spec, ok := m.find(call.Name)
	if !ok {
		return nil, &UnknownCommandError{Command: call.Name}
	}

	params := call.Params
	if params == nil {
		params = map[string]any{}
	}

	var missing []string
	for _, name := range spec.Required {
		if v, ok := params[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Command: call.Name, Missing: missing}
	}

	// Declared fields must match their declared types. Extra fields
	// the schema does not know about pass through untouched.
	if err := m.schemas[call.Name].Validate(params); err != nil {
		return nil, &ValidationError{Command: call.Name, Reason: err.Error()}
	}

	rec := ActionRecord{
		Prompt:  prompt,
		Command: spec.Name,
		Payload: normalizePayload(spec.Name, params),
	}
	return m.write(rec)
}

func (m *Materializer) find(name string) (llm.ToolSpec, bool) {
	for _, t := range m.specs {
		if t.Name == name {
			return t, true
		}
	}
	return llm.ToolSpec{}, false
}

// normalizePayload copies the arguments and applies per-command
// cleanup. follow_up_then dates get sanitized again here in case the
// model ignored the instructions.
func normalizePayload(command string, params map[string]any) map[string]any {
	payload := make(map[string]any, len(params))
	for k, v := range params {
		payload[k] = v
	}
	if command == "follow_up_then" {
		if date, ok := payload["date"].(string); ok {
			payload["date"] = SanitizeDate(date)
		}
	}
	return payload
}

func (m *Materializer) write(rec ActionRecord) (*Stored, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.json", m.now().Format("20060102_150405"), rec.Command, m.suffix())
	path := filepath.Join(m.dir, name)

	// Write to a temp file in the same directory, then rename, so a
	// concurrent reader never observes a partial record.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up
		return nil, fmt.Errorf("moving record into place: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving record path: %w", err)
	}
	return &Stored{Record: rec, Path: abs, Size: len(data)}, nil
}

// shortID keeps two records written within the same second apart.
func shortID() string {
	return uuid.NewString()[:8]
}
