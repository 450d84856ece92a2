package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marek/faf/internal/llm"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the capture actions and their parameters",
	Run: func(_ *cobra.Command, _ []string) {
		for _, t := range llm.CaptureTools {
			required := strings.Join(t.Required, ", ")
			if required == "" {
				required = "(none)"
			}
			fmt.Printf("%s\n  required: %s\n  %s\n", t.Name, required, firstLine(t.Description))
		}
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
