package llm

// ToolSpec declares one capture tool. The descriptions are what the
// model reads to pick a tool, so their wording is part of the contract;
// changing it changes routing behavior.
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Parameters assembles the JSON Schema object attached to the function
// declaration on the wire.
func (t ToolSpec) Parameters() map[string]any {
	return objReq(t.Properties, t.Required...)
}

// CaptureTools is the fixed tool catalog, in declaration order. It
// never changes at runtime.
var CaptureTools = []ToolSpec{
	{
		Name: "follow_up_then",
		Description: `Send a follow-up reminder with the given date and message. Use ONLY IF there is a specific date provided or a time reference, like "tomorrow" or "in 2 days".

Constraints on the date:
- Never use "this" in the date like "thisMonday" or "thisTuesday" as FUT does not support them.
- Never use "in a week", "in two weeks" or "in a month"; replace them with "1week", "2weeks" and "1month" respectively.
- The date cannot have any spaces, dots, semicolons or commas.
- Never use colons in hours, use "3pm" instead of "3:00pm".`,
		Properties: map[string]any{
			"date":    prop("string", `Date of the follow-up in the format like "1August", "tomorrow3pm" or "in2days".`),
			"message": prop("string", "Message to send. Do not include the date in the message."),
		},
		Required: []string{"date", "message"},
	},
	{
		Name:        "note_to_self",
		Description: "Send a note to user with the given message. Useful for simple todos, reminders and short-term follow ups.",
		Properties: map[string]any{
			"message": prop("string", "Message to send. Should be based on the prompt, without any additional information."),
		},
		Required: []string{"message"},
	},
	{
		Name:        "save_url",
		Description: "Save a URL to a URL list so that I can review it later. Use only if the input is a valid URL.",
		Properties: map[string]any{
			"url": prop("string", "URL to append to the URL list."),
		},
		Required: []string{"url"},
	},
	{
		Name:        "va_request",
		Description: `Send a request to the VA with the given message. Use only if the input explicitly asks for a virtual assistant or VA. Use ONLY if the prompt includes the words "virtual assistant", "v assistant" or "VA".`,
		Properties: map[string]any{
			"title":   prop("string", "Title of the request, used as a Trello card title. Keep it short."),
			"request": prop("string", "Request to send."),
		},
		Required: []string{"title", "request"},
	},
	{
		Name:        "journaling_topic",
		Description: "Save a journaling topic to the idea list, to write about later.",
		Properties: map[string]any{
			"topic": prop("string", "Topic to save, with any relevant details."),
		},
		Required: []string{"topic"},
	},
}

// Find returns the spec registered under name. Exact match only, no
// aliases.
func Find(name string) (ToolSpec, bool) {
	for _, t := range CaptureTools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSpec{}, false
}

// Helper functions for building JSON Schema objects.

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func obj(properties map[string]any) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func objReq(properties map[string]any, required ...string) map[string]any {
	s := obj(properties)
	s["required"] = required
	return s
}
