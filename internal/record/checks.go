package record

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Semantic checks for the direct server operations. The model path
// skips these: there the instructions steer the model, and any
// well-formed call materializes. A direct caller gets told outright.

// CheckURL verifies the value looks like a fetchable URL.
func CheckURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if strings.Contains(raw, " ") {
		return fmt.Errorf("URL cannot contain spaces")
	}
	if !strings.Contains(raw, ".") {
		return fmt.Errorf("URL must contain a domain with a dot")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("URL must have a valid host")
	}
	return nil
}

// CheckDate enforces the follow-up service's date grammar.
func CheckDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}
	// Check the known phrases before the character rules; they contain
	// spaces and would otherwise get the less helpful message.
	lower := strings.ToLower(date)
	for _, p := range []string{"in a week", "in two weeks", "in a month"} {
		if strings.Contains(lower, p) {
			return fmt.Errorf(`use "1week", "2weeks" or "1month" instead of %q`, p)
		}
	}
	for _, c := range []string{" ", ".", ",", ";"} {
		if strings.Contains(date, c) {
			return fmt.Errorf("date cannot contain %q", c)
		}
	}
	if strings.HasPrefix(lower, "this") {
		return fmt.Errorf(`date cannot start with "this"; name the day directly`)
	}
	if strings.Contains(date, ":") {
		return fmt.Errorf(`hours cannot contain colons; use "3pm" instead of "3:00pm"`)
	}
	return nil
}

var vaWord = regexp.MustCompile(`\bva\b`)

// CheckVAPrompt verifies the prompt actually asks for the assistant.
func CheckVAPrompt(prompt string) error {
	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "virtual assistant") || strings.Contains(lower, "v assistant") || vaWord.MatchString(lower) {
		return nil
	}
	return fmt.Errorf("the request does not mention a virtual assistant or VA")
}

// SanitizeDate strips what the follow-up service rejects: a "this"
// prefix, spaces, dots and commas. The model is told not to produce
// them; this runs anyway.
func SanitizeDate(date string) string {
	date = strings.ReplaceAll(date, "this", "")
	date = strings.ReplaceAll(date, " ", "")
	date = strings.ReplaceAll(date, ".", "")
	date = strings.ReplaceAll(date, ",", "")
	return date
}
